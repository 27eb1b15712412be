package store

import (
	"context"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/models"
	"gorm.io/gorm"
)

// LinkRepository manages rows of one association table.
type LinkRepository[L any, P models.LinkRecord[L]] struct {
	db *gorm.DB
}

func Links[L any, P models.LinkRecord[L]](db *gorm.DB) *LinkRepository[L, P] {
	return &LinkRepository[L, P]{db: db}
}

func (r *LinkRepository[L, P]) Kind() string {
	return P(new(L)).Kind()
}

func (r *LinkRepository[L, P]) List(ctx context.Context) ([]L, error) {
	out := []L{}
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, translate(err, "list", r.Kind())
	}
	return out, nil
}

// Create inserts the row. Both endpoints must exist; otherwise the foreign
// keys reject it and the error is a constraint violation.
func (r *LinkRepository[L, P]) Create(ctx context.Context, row P) error {
	if err := row.Validate(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	return translate(err, "link", r.Kind())
}

// Delete removes the row matching every key column of row.
func (r *LinkRepository[L, P]) Delete(ctx context.Context, row P) error {
	if err := row.Validate(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("unlink", r.Kind())
		}
		return nil
	})
	return translate(err, "unlink", r.Kind())
}
