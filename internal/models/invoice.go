package models

import (
	"github.com/diewo77/fieldservice/internal/validation"
	"github.com/shopspring/decimal"
)

// Invoice represents a billing estimate/invoice for a job.
type Invoice struct {
	InvoiceID     uint    `gorm:"column:invoice_id;primaryKey" json:"invoiceId"`
	LotSize       string  `gorm:"size:100;not null" json:"lotSize"`
	InvoiceDate   string  `gorm:"size:10;not null" json:"invoiceDate"`
	DueDate       string  `gorm:"size:10;not null" json:"dueDate"`
	EmailStatus   bool    `gorm:"not null" json:"emailStatus"` // reminder already sent
	ProductsUsed  string  `gorm:"type:text;not null" json:"productsUsed"`
	AcceptedBy    string  `gorm:"size:255;not null" json:"acceptedBy"`
	ApplyTax      bool    `gorm:"not null" json:"applyTax"`
	TaxAmount     float64 `gorm:"not null" json:"taxAmount"`
	TotalEstimate float64 `gorm:"not null" json:"totalEstimate"`
	Paid          bool    `gorm:"not null" json:"paid"`

	Jobs         []Job         `gorm:"foreignKey:InvoiceID;references:InvoiceID;constraint:fk_jobs_invoice,OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ServiceLinks []ServiceLink `gorm:"foreignKey:InvoiceID;references:InvoiceID;constraint:fk_service_links_invoice,OnDelete:CASCADE" json:"-"`
}

func (Invoice) TableName() string        { return "invoices" }
func (Invoice) Kind() string             { return "Invoice" }
func (i *Invoice) PrimaryKey() uint      { return i.InvoiceID }
func (i *Invoice) SetPrimaryKey(id uint) { i.InvoiceID = id }

func (i *Invoice) Validate() error {
	v := make(validation.Violations)
	validation.Required("lotSize", i.LotSize, v)
	validation.Required("invoiceDate", i.InvoiceDate, v)
	validation.Date("invoiceDate", i.InvoiceDate, v)
	validation.Required("dueDate", i.DueDate, v)
	validation.Date("dueDate", i.DueDate, v)
	validation.NotBefore("dueDate", i.DueDate, i.InvoiceDate, v)
	validation.Required("productsUsed", i.ProductsUsed, v)
	validation.Required("acceptedBy", i.AcceptedBy, v)
	validation.NonNegativeFloat("taxAmount", i.TaxAmount, v)
	validation.NonNegativeFloat("totalEstimate", i.TotalEstimate, v)
	return invalid(i.Kind(), v)
}

// TotalDue is the estimate plus tax when tax applies.
func (i *Invoice) TotalDue() decimal.Decimal {
	total := decimal.NewFromFloat(i.TotalEstimate)
	if i.ApplyTax {
		total = total.Add(decimal.NewFromFloat(i.TaxAmount))
	}
	return total
}

// AmountMinorUnits returns TotalDue in cents, rounded half away from zero.
func (i *Invoice) AmountMinorUnits() int64 {
	return i.TotalDue().Shift(2).Round(0).IntPart()
}
