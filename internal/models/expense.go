package models

import "github.com/diewo77/fieldservice/internal/validation"

// Expense is a purchase made by an employee, optionally for a job.
type Expense struct {
	ExpenseID      uint    `gorm:"column:expense_id;primaryKey" json:"expenseId"`
	ExpenseDate    string  `gorm:"size:10;not null" json:"expenseDate"`
	Store          string  `gorm:"size:255;not null" json:"store"`
	ItemsPurchased string  `gorm:"type:text;not null" json:"itemsPurchased"`
	TotalAmount    float64 `gorm:"not null" json:"totalAmount"`
	Reason         string  `gorm:"type:text;not null" json:"reason"`
	PurchasedBy    uint    `gorm:"column:purchased_by;index;not null" json:"purchasedBy"`
	LinkedJob      *uint   `gorm:"column:linked_job;index" json:"linkedJob"`
}

func (Expense) TableName() string        { return "expenses" }
func (Expense) Kind() string             { return "Expense" }
func (e *Expense) PrimaryKey() uint      { return e.ExpenseID }
func (e *Expense) SetPrimaryKey(id uint) { e.ExpenseID = id }

func (e *Expense) Validate() error {
	v := make(validation.Violations)
	validation.Required("expenseDate", e.ExpenseDate, v)
	validation.Date("expenseDate", e.ExpenseDate, v)
	validation.Required("store", e.Store, v)
	validation.Required("itemsPurchased", e.ItemsPurchased, v)
	validation.NonNegativeFloat("totalAmount", e.TotalAmount, v)
	validation.Required("reason", e.Reason, v)
	validation.RequiredID("purchasedBy", e.PurchasedBy, v)
	optionalID("linkedJob", e.LinkedJob, v)
	return invalid(e.Kind(), v)
}
