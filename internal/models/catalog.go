package models

import "github.com/diewo77/fieldservice/internal/validation"

// Services is a service line item (mowing, aeration, ...).
type Services struct {
	ServiceID uint   `gorm:"column:service_id;primaryKey" json:"serviceId"`
	Service   string `gorm:"size:255;not null" json:"service"`

	Links []ServiceLink `gorm:"foreignKey:ServiceID;references:ServiceID;constraint:fk_service_links_service,OnDelete:CASCADE" json:"-"`
}

func (Services) TableName() string        { return "services" }
func (Services) Kind() string             { return "Service" }
func (s *Services) PrimaryKey() uint      { return s.ServiceID }
func (s *Services) SetPrimaryKey(id uint) { s.ServiceID = id }

func (s *Services) Validate() error {
	v := make(validation.Violations)
	validation.Required("service", s.Service, v)
	return invalid(s.Kind(), v)
}

// Frequency is a recurrence label such as "Weekly" or "Monthly".
type Frequency struct {
	FrequencyID      uint   `gorm:"column:frequency_id;primaryKey" json:"frequencyId"`
	ServiceFrequency string `gorm:"size:100;not null" json:"serviceFrequency"`

	CustomerLinks []CustomerFrequencyLink `gorm:"foreignKey:FrequencyID;references:FrequencyID;constraint:fk_customer_frequency_links_frequency,OnDelete:CASCADE" json:"-"`
}

func (Frequency) TableName() string        { return "frequencies" }
func (Frequency) Kind() string             { return "Frequency" }
func (f *Frequency) PrimaryKey() uint      { return f.FrequencyID }
func (f *Frequency) SetPrimaryKey(id uint) { f.FrequencyID = id }

func (f *Frequency) Validate() error {
	v := make(validation.Violations)
	validation.Required("serviceFrequency", f.ServiceFrequency, v)
	return invalid(f.Kind(), v)
}

// ServiceArea is a town or region the business serves.
type ServiceArea struct {
	ServiceAreaID uint   `gorm:"column:service_area_id;primaryKey" json:"serviceAreaId"`
	TownServiced  string `gorm:"size:255;not null" json:"townServiced"`

	CustomerLinks []CustomerServiceAreaLink `gorm:"foreignKey:ServiceAreaID;references:ServiceAreaID;constraint:fk_customer_service_area_links_service_area,OnDelete:CASCADE" json:"-"`
}

func (ServiceArea) TableName() string        { return "service_areas" }
func (ServiceArea) Kind() string             { return "Service Area" }
func (a *ServiceArea) PrimaryKey() uint      { return a.ServiceAreaID }
func (a *ServiceArea) SetPrimaryKey(id uint) { a.ServiceAreaID = id }

func (a *ServiceArea) Validate() error {
	v := make(validation.Violations)
	validation.Required("townServiced", a.TownServiced, v)
	return invalid(a.Kind(), v)
}
