package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// postgres SQLSTATE codes of integrity violations.
const (
	pgNotNull    = "23502"
	pgForeignKey = "23503"
	pgUnique     = "23505"
	pgCheck      = "23514"
)

// translate converts a driver/gorm error into the errs taxonomy. Errors that
// are already classified pass through unchanged; anything else is wrapped with
// the operation that failed.
func translate(err error, op, kind string) error {
	if err == nil {
		return nil
	}
	if _, ok := errs.As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(op, kind)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKey, pgUnique, pgCheck:
			return errs.Constraint(op, kind, pgErr.ConstraintName, err)
		case pgNotNull:
			e := errs.Constraint(op, kind, pgErr.ConstraintName, err)
			e.Column = pgErr.ColumnName
			return e
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return errs.Constraint(op, kind, sqliteConstraintName(liteErr.ExtendedCode), err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return errs.Unavailable(op, "Database", 0, err)
		}
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return errs.Constraint(op, kind, "", err)
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return errs.Unavailable(op, "Database", 0, err)
	}

	// Fallback on message text for drivers that wrap without exposing a type.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "violates foreign key constraint"),
		strings.Contains(msg, "duplicate key value violates unique constraint"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return errs.Constraint(op, kind, extractConstraintName(msg), err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"):
		return errs.Unavailable(op, "Database", 0, err)
	}
	return unclassified(op, kind, err)
}

// unclassified names the failing store operation on errors outside the
// taxonomy (schema errors, driver bugs). They still render as a 500.
func unclassified(op, kind string, err error) error {
	if strings.HasPrefix(err.Error(), "store ") {
		return err
	}
	if kind == "" {
		return fmt.Errorf("store %s: %w", op, err)
	}
	return fmt.Errorf("store %s %s: %w", op, kind, err)
}

func sqliteConstraintName(code sqlite3.ErrNoExtended) string {
	switch code {
	case sqlite3.ErrConstraintForeignKey:
		return "foreign_key"
	case sqlite3.ErrConstraintUnique:
		return "unique"
	case sqlite3.ErrConstraintPrimaryKey:
		return "primary_key"
	case sqlite3.ErrConstraintNotNull:
		return "not_null"
	case sqlite3.ErrConstraintCheck:
		return "check"
	}
	return ""
}

// extractConstraintName returns the first double-quoted token after
// "constraint", e.g. `... violates foreign key constraint "fk_jobs_employee"`.
func extractConstraintName(msg string) string {
	idx := strings.Index(msg, "constraint \"")
	if idx == -1 {
		return ""
	}
	start := idx + len("constraint \"")
	end := strings.Index(msg[start:], "\"")
	if end == -1 {
		return ""
	}
	return msg[start : start+end]
}
