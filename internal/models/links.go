package models

import "github.com/diewo77/fieldservice/internal/validation"

// ServiceLink records that a service was performed for a customer on a job
// and billed on an invoice.
type ServiceLink struct {
	ServiceID  uint `gorm:"column:service_id;primaryKey;autoIncrement:false" json:"serviceId"`
	InvoiceID  uint `gorm:"column:invoice_id;primaryKey;autoIncrement:false" json:"invoiceId"`
	CustomerID uint `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customerId"`
	JobID      uint `gorm:"column:job_id;primaryKey;autoIncrement:false" json:"jobId"`
}

func (ServiceLink) TableName() string { return "service_links" }
func (ServiceLink) Kind() string      { return "Service link" }

func (l *ServiceLink) Validate() error {
	v := make(validation.Violations)
	validation.RequiredID("serviceId", l.ServiceID, v)
	validation.RequiredID("invoiceId", l.InvoiceID, v)
	validation.RequiredID("customerId", l.CustomerID, v)
	validation.RequiredID("jobId", l.JobID, v)
	return invalid(l.Kind(), v)
}

type CustomerJobsLink struct {
	CustomerID uint `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customerId"`
	JobID      uint `gorm:"column:job_id;primaryKey;autoIncrement:false" json:"jobId"`
}

func (CustomerJobsLink) TableName() string { return "customer_jobs_links" }
func (CustomerJobsLink) Kind() string      { return "Customer job link" }

func (l *CustomerJobsLink) Validate() error {
	v := make(validation.Violations)
	validation.RequiredID("customerId", l.CustomerID, v)
	validation.RequiredID("jobId", l.JobID, v)
	return invalid(l.Kind(), v)
}

type CustomerFrequencyLink struct {
	FrequencyID uint `gorm:"column:frequency_id;primaryKey;autoIncrement:false" json:"frequencyId"`
	CustomerID  uint `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customerId"`
}

func (CustomerFrequencyLink) TableName() string { return "customer_frequency_links" }
func (CustomerFrequencyLink) Kind() string      { return "Customer frequency link" }

func (l *CustomerFrequencyLink) Validate() error {
	v := make(validation.Violations)
	validation.RequiredID("frequencyId", l.FrequencyID, v)
	validation.RequiredID("customerId", l.CustomerID, v)
	return invalid(l.Kind(), v)
}

type CustomerServiceAreaLink struct {
	CustomerID    uint `gorm:"column:customer_id;primaryKey;autoIncrement:false" json:"customerId"`
	ServiceAreaID uint `gorm:"column:service_area_id;primaryKey;autoIncrement:false" json:"serviceAreaId"`
}

func (CustomerServiceAreaLink) TableName() string { return "customer_service_area_links" }
func (CustomerServiceAreaLink) Kind() string      { return "Customer service area link" }

func (l *CustomerServiceAreaLink) Validate() error {
	v := make(validation.Violations)
	validation.RequiredID("customerId", l.CustomerID, v)
	validation.RequiredID("serviceAreaId", l.ServiceAreaID, v)
	return invalid(l.Kind(), v)
}
