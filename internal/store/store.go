// Package store is the transactional entity store. Every write runs inside a
// database transaction and every driver error leaves the package classified
// in the errs taxonomy.
package store

import (
	"context"
	"fmt"

	"github.com/diewo77/fieldservice/internal/models"
	"gorm.io/gorm"
)

// Store wraps the shared connection pool. It holds no entity state.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn in a database transaction. fn receives a handle bound to
// the transaction; returning an error rolls back every write made through it.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return translate(s.db.WithContext(ctx).Transaction(fn), "transaction", "")
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return translate(s.db.WithContext(ctx).Exec("SELECT 1").Error, "ping", "Database")
}

func writeLinks(tx *gorm.DB, rec any) error {
	if lw, ok := rec.(models.LinkWriter); ok {
		return lw.WriteLinks(tx)
	}
	return nil
}

// syncSequence moves a postgres serial sequence past an explicitly supplied id
// so later generated ids do not collide with it.
func syncSequence(tx *gorm.DB, model any) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(model); err != nil {
		return err
	}
	field := stmt.Schema.PrioritizedPrimaryField
	if field == nil {
		return nil
	}
	table, column := stmt.Schema.Table, field.DBName
	sql := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', '%s'), GREATEST((SELECT MAX(%s) FROM %s), 1))`,
		table, column, column, table,
	)
	return tx.Exec(sql).Error
}
