package models

import (
	"github.com/diewo77/fieldservice/internal/validation"
	"gorm.io/gorm"
)

// Customer is a residential or commercial client of the business.
type Customer struct {
	CustomerID      uint   `gorm:"column:customer_id;primaryKey" json:"customerId"`
	FirstName       string `gorm:"size:100;not null" json:"fName"`
	LastName        string `gorm:"size:100;not null" json:"lName"`
	PhoneNumber     string `gorm:"size:50;not null" json:"phoneNumber"`
	Email           string `gorm:"size:255;not null" json:"email"`
	BillingAddress  string `gorm:"size:500;not null" json:"billingAddress"`
	PhysicalAddress string `gorm:"size:500;not null" json:"physicalAddress"`
	LastPaymentDate string `gorm:"size:10;not null" json:"lastPaymentDate"`
	LastServiceDate string `gorm:"size:10;not null" json:"lastServiceDate"`
	IsResidential   bool   `gorm:"not null" json:"isResidential"`
	Comments        string `gorm:"type:text" json:"comments"`

	// Write-only link targets. When set, the upsert replaces the customer's
	// frequency / service area link in the same transaction.
	FrequencyID   *uint `gorm:"-" json:"frequencyId,omitempty"`
	ServiceAreaID *uint `gorm:"-" json:"serviceAreaId,omitempty"`

	Users            []User                    `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:fk_users_customer,OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	JobLinks         []CustomerJobsLink        `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:fk_customer_jobs_links_customer,OnDelete:CASCADE" json:"-"`
	FrequencyLinks   []CustomerFrequencyLink   `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:fk_customer_frequency_links_customer,OnDelete:CASCADE" json:"-"`
	ServiceAreaLinks []CustomerServiceAreaLink `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:fk_customer_service_area_links_customer,OnDelete:CASCADE" json:"-"`
	ServiceLinks     []ServiceLink             `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:fk_service_links_customer,OnDelete:CASCADE" json:"-"`
}

func (Customer) TableName() string        { return "customers" }
func (Customer) Kind() string             { return "Customer" }
func (c *Customer) PrimaryKey() uint      { return c.CustomerID }
func (c *Customer) SetPrimaryKey(id uint) { c.CustomerID = id }

// FullName returns "First Last".
func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

func (c *Customer) Validate() error {
	v := make(validation.Violations)
	validation.Required("fName", c.FirstName, v)
	validation.Required("lName", c.LastName, v)
	validation.Required("phoneNumber", c.PhoneNumber, v)
	validation.Required("email", c.Email, v)
	validation.Email("email", c.Email, v)
	validation.Required("billingAddress", c.BillingAddress, v)
	validation.Required("physicalAddress", c.PhysicalAddress, v)
	validation.Required("lastPaymentDate", c.LastPaymentDate, v)
	validation.Date("lastPaymentDate", c.LastPaymentDate, v)
	validation.Required("lastServiceDate", c.LastServiceDate, v)
	validation.Date("lastServiceDate", c.LastServiceDate, v)
	optionalID("frequencyId", c.FrequencyID, v)
	optionalID("serviceAreaId", c.ServiceAreaID, v)
	return invalid(c.Kind(), v)
}

func (c *Customer) WriteLinks(tx *gorm.DB) error {
	if c.FrequencyID != nil {
		row := &CustomerFrequencyLink{CustomerID: c.CustomerID, FrequencyID: *c.FrequencyID}
		if err := replaceLink(tx, &CustomerFrequencyLink{}, "customer_id", c.CustomerID, row); err != nil {
			return err
		}
	}
	if c.ServiceAreaID != nil {
		row := &CustomerServiceAreaLink{CustomerID: c.CustomerID, ServiceAreaID: *c.ServiceAreaID}
		if err := replaceLink(tx, &CustomerServiceAreaLink{}, "customer_id", c.CustomerID, row); err != nil {
			return err
		}
	}
	return nil
}
