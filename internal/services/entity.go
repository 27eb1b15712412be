package services

import (
	"context"

	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/models"
	"github.com/diewo77/fieldservice/internal/store"
	"gorm.io/gorm"
)

// EntityService implements create/read/upsert/delete for one entity type.
type EntityService[E any, P models.Record[E]] struct {
	store *store.Store
}

func NewEntityService[E any, P models.Record[E]](st *store.Store) *EntityService[E, P] {
	return &EntityService[E, P]{store: st}
}

func (s *EntityService[E, P]) Kind() string {
	return P(new(E)).Kind()
}

func (s *EntityService[E, P]) Get(ctx context.Context, id uint) (P, error) {
	return store.For[E, P](s.store.DB()).Get(ctx, id)
}

func (s *EntityService[E, P]) List(ctx context.Context) ([]E, error) {
	return store.For[E, P](s.store.DB()).List(ctx)
}

// Create inserts candidate. An id embedded in the payload is treated as a
// path id, so repeating the same POST overwrites instead of duplicating.
func (s *EntityService[E, P]) Create(ctx context.Context, candidate P) (P, error) {
	var id *uint
	if pk := candidate.PrimaryKey(); pk != 0 {
		id = &pk
	}
	out, _, err := s.Upsert(ctx, id, candidate)
	return out, err
}

// Upsert validates candidate, then inserts it or overwrites the row with the
// given id. With id == nil the store assigns one. When no row has the given
// id the candidate is inserted under it. created reports which branch ran.
func (s *EntityService[E, P]) Upsert(ctx context.Context, id *uint, candidate P) (P, bool, error) {
	if err := candidate.Validate(); err != nil {
		return nil, false, err
	}
	created := false
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		repo := store.For[E, P](tx)
		if id == nil {
			candidate.SetPrimaryKey(0)
			created = true
			return repo.Insert(ctx, candidate)
		}
		candidate.SetPrimaryKey(*id)
		_, err := repo.Get(ctx, *id)
		switch {
		case errs.IsNotFound(err):
			created = true
			return repo.Insert(ctx, candidate)
		case err != nil:
			return err
		}
		return repo.Update(ctx, candidate)
	})
	if err != nil {
		return nil, false, err
	}
	return candidate, created, nil
}

func (s *EntityService[E, P]) Delete(ctx context.Context, id uint) error {
	return store.For[E, P](s.store.DB()).Delete(ctx, id)
}
