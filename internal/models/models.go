package models

import (
	"github.com/diewo77/fieldservice/internal/errs"
	"github.com/diewo77/fieldservice/internal/validation"
	"gorm.io/gorm"
)

// Entity is implemented by every persisted business record.
type Entity interface {
	TableName() string
	// Kind is the display name used in client-facing messages ("Customer not found").
	Kind() string
	PrimaryKey() uint
	SetPrimaryKey(id uint)
	Validate() error
}

// Record constrains generic code to pointers of entity structs.
type Record[E any] interface {
	*E
	Entity
}

// LinkWriter is implemented by entities whose payload may carry link rows.
// WriteLinks runs inside the transaction that persisted the entity.
type LinkWriter interface {
	WriteLinks(tx *gorm.DB) error
}

// Redactor clears fields that must never be serialized back to clients.
type Redactor interface {
	Redact()
}

// Link is a row of a many-to-many association table.
type Link interface {
	TableName() string
	Kind() string
	Validate() error
}

// LinkRecord constrains generic code to pointers of link structs.
type LinkRecord[L any] interface {
	*L
	Link
}

// All returns every model for AutoMigrate, parents before the tables that
// reference them. Foreign keys are declared on the parents (has-many), so a
// parent must be parsed before its children are created.
func All() []any {
	return []any{
		&Employee{}, &Customer{}, &Invoice{}, &Services{}, &Frequency{}, &ServiceArea{},
		&Job{}, &Expense{}, &User{},
		&ServiceLink{}, &CustomerJobsLink{}, &CustomerFrequencyLink{}, &CustomerServiceAreaLink{},
	}
}

func invalid(kind string, v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return errs.Validation("validate", kind, v)
}

// replaceLink drops the owner's current rows in the link table and inserts row.
func replaceLink(tx *gorm.DB, model any, ownerColumn string, ownerID uint, row any) error {
	if err := tx.Where(ownerColumn+" = ?", ownerID).Delete(model).Error; err != nil {
		return err
	}
	return tx.Create(row).Error
}

func optionalID(field string, id *uint, v validation.Violations) {
	if id != nil && *id == 0 {
		v[field] = "invalid_id"
	}
}
