package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTranslate(t *testing.T) {
	classified := errs.NotFound("get", "Job")
	plain := errors.New("something odd")

	tests := []struct {
		name       string
		err        error
		kind       error
		constraint string
	}{
		{"record not found", gorm.ErrRecordNotFound, errs.ErrNotFound, ""},
		{"wrapped record not found", fmt.Errorf("first: %w", gorm.ErrRecordNotFound), errs.ErrNotFound, ""},
		{"pg foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "fk_jobs_employee"}, errs.ErrConstraint, "fk_jobs_employee"},
		{"pg unique", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, errs.ErrConstraint, "idx_users_email"},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, errs.ErrConstraint, "foreign_key"},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, errs.ErrConstraint, "primary_key"},
		{"gorm translated", gorm.ErrForeignKeyViolated, errs.ErrConstraint, ""},
		{"message fallback", errors.New(`ERROR: insert or update on table "jobs" violates foreign key constraint "fk_jobs_employee"`), errs.ErrConstraint, "fk_jobs_employee"},
		{"bad conn", driver.ErrBadConn, errs.ErrUpstreamUnavailable, ""},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), errs.ErrUpstreamUnavailable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err, "op", "Job")
			require.ErrorIs(t, got, tt.kind)
			e, ok := errs.As(got)
			require.True(t, ok)
			assert.Equal(t, tt.constraint, e.Constraint)
		})
	}

	assert.Nil(t, translate(nil, "op", "Job"))
	assert.Same(t, classified, translate(classified, "op", "Job"))

	wrapped := translate(plain, "insert", "Job")
	require.ErrorIs(t, wrapped, plain)
	_, ok := errs.As(wrapped)
	assert.False(t, ok, "unknown errors stay outside the taxonomy")
	assert.Equal(t, "store insert Job: something odd", wrapped.Error())
	assert.Equal(t, wrapped, translate(wrapped, "transaction", ""), "wrapped once")

	schema := sqlite3.Error{Code: sqlite3.ErrError}
	assert.Contains(t, translate(schema, "insert", "Customer").Error(), "store insert Customer")
	require.ErrorIs(t, translate(sqlite3.Error{Code: sqlite3.ErrBusy}, "insert", "Job"), errs.ErrUpstreamUnavailable)
}

func TestExtractConstraintName(t *testing.T) {
	assert.Equal(t, "fk_x", extractConstraintName(`violates foreign key constraint "fk_x" on table`))
	assert.Equal(t, "", extractConstraintName("no quotes here"))
	assert.Equal(t, "", extractConstraintName(`constraint "unterminated`))
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestPostgresDeleteRestricted(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "employees"`).
		WillReturnError(&pgconn.PgError{
			Code:           "23503",
			Message:        `update or delete on table "employees" violates foreign key constraint "fk_jobs_employee" on table "jobs"`,
			ConstraintName: "fk_jobs_employee",
		})
	mock.ExpectRollback()

	err := For[models.Employee](db).Delete(context.Background(), 7)
	require.ErrorIs(t, err, errs.ErrConstraint)
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, "fk_jobs_employee", e.Constraint)
	assert.Equal(t, "Employee", e.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteMissing(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "services"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := For[models.Services](db).Delete(context.Background(), 999)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissing(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "first_name"}))

	_, err := For[models.Customer](db).Get(context.Background(), 3)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListUnavailable(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "jobs"`).
		WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	_, err := For[models.Job](db).List(context.Background())
	require.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}
