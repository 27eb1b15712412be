package store

import (
	"context"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides typed access to one entity table. It is cheap to build;
// bind it to a transaction handle with For(tx) inside Store.Transaction.
type Repository[E any, P models.Record[E]] struct {
	db *gorm.DB
}

func For[E any, P models.Record[E]](db *gorm.DB) *Repository[E, P] {
	return &Repository[E, P]{db: db}
}

// Kind returns the entity display name.
func (r *Repository[E, P]) Kind() string {
	return P(new(E)).Kind()
}

func (r *Repository[E, P]) Get(ctx context.Context, id uint) (P, error) {
	var e E
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err, "get", r.Kind())
	}
	return P(&e), nil
}

// List returns every row; order is whatever the database yields.
func (r *Repository[E, P]) List(ctx context.Context) ([]E, error) {
	out := []E{}
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, translate(err, "list", r.Kind())
	}
	return out, nil
}

// FindByIDs batch-fetches rows by primary key. Missing ids are skipped.
func (r *Repository[E, P]) FindByIDs(ctx context.Context, ids []uint) ([]E, error) {
	out := []E{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Find(&out, ids).Error; err != nil {
		return nil, translate(err, "find", r.Kind())
	}
	return out, nil
}

// Where returns the rows whose column equals id (foreign-key scan).
func (r *Repository[E, P]) Where(ctx context.Context, column string, id uint) ([]E, error) {
	out := []E{}
	cond := clause.Eq{Column: clause.Column{Name: column}, Value: id}
	if err := r.db.WithContext(ctx).Where(cond).Find(&out).Error; err != nil {
		return nil, translate(err, "find", r.Kind())
	}
	return out, nil
}

// Insert persists rec and its link rows atomically. A zero primary key is
// assigned by the database; a non-zero one is kept.
func (r *Repository[E, P]) Insert(ctx context.Context, rec P) error {
	explicit := rec.PrimaryKey() != 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if explicit {
			if err := syncSequence(tx, rec); err != nil {
				return err
			}
		}
		return writeLinks(tx, rec)
	})
	return translate(err, "insert", r.Kind())
}

// Update overwrites every declared column of the row identified by rec's
// primary key, then rewrites its link rows, atomically.
func (r *Repository[E, P]) Update(ctx context.Context, rec P) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		return writeLinks(tx, rec)
	})
	return translate(err, "update", r.Kind())
}

// Delete removes the row. A missing row is NotFound; a row still required by
// dependents fails with a constraint violation.
func (r *Repository[E, P]) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(P(new(E)), id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("delete", r.Kind())
		}
		return nil
	})
	return translate(err, "delete", r.Kind())
}
