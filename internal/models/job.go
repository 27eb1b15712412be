package models

import (
	"github.com/diewo77/fieldservice/internal/validation"
	"gorm.io/gorm"
)

// Job is a scheduled visit performed by one employee.
// The job owns its invoice reference; Invoice.job is derived from it.
type Job struct {
	JobID         uint   `gorm:"column:job_id;primaryKey" json:"jobId"`
	ArrivalWindow string `gorm:"size:100;not null" json:"arrivalWindow"`
	ClockIn       string `gorm:"size:40" json:"clockIn"`
	ClockOut      string `gorm:"size:40" json:"clockOut"`
	EmployeeID    uint   `gorm:"column:employee_id;index;not null" json:"employeeId"`
	Payment       bool   `gorm:"not null" json:"payment"`
	IsActive      bool   `gorm:"not null" json:"isActive"`
	Comments      string `gorm:"type:text" json:"comments"`
	InvoiceID     *uint  `gorm:"column:invoice_id;index" json:"invoiceId"`

	// Write-only: when set, replaces the job's customer link.
	CustomerID *uint `gorm:"-" json:"customerId,omitempty"`

	Expenses      []Expense          `gorm:"foreignKey:LinkedJob;references:JobID;constraint:fk_expenses_job,OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	CustomerLinks []CustomerJobsLink `gorm:"foreignKey:JobID;references:JobID;constraint:fk_customer_jobs_links_job,OnDelete:CASCADE" json:"-"`
	ServiceLinks  []ServiceLink      `gorm:"foreignKey:JobID;references:JobID;constraint:fk_service_links_job,OnDelete:CASCADE" json:"-"`
}

func (Job) TableName() string        { return "jobs" }
func (Job) Kind() string             { return "Job" }
func (j *Job) PrimaryKey() uint      { return j.JobID }
func (j *Job) SetPrimaryKey(id uint) { j.JobID = id }

func (j *Job) Validate() error {
	v := make(validation.Violations)
	validation.Required("arrivalWindow", j.ArrivalWindow, v)
	validation.RequiredID("employeeId", j.EmployeeID, v)
	optionalID("invoiceId", j.InvoiceID, v)
	optionalID("customerId", j.CustomerID, v)
	return invalid(j.Kind(), v)
}

func (j *Job) WriteLinks(tx *gorm.DB) error {
	if j.CustomerID == nil {
		return nil
	}
	row := &CustomerJobsLink{CustomerID: *j.CustomerID, JobID: j.JobID}
	return replaceLink(tx, &CustomerJobsLink{}, "job_id", j.JobID, row)
}
