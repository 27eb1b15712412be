package models

import "github.com/diewo77/fieldservice/internal/validation"

// Employee is a field technician or office worker.
type Employee struct {
	EmployeeID  uint    `gorm:"column:employee_id;primaryKey" json:"empId"`
	FirstName   string  `gorm:"size:100;not null" json:"fName"`
	LastName    string  `gorm:"size:100;not null" json:"lName"`
	BirthDate   string  `gorm:"size:10;not null" json:"birthDate"`
	PhoneNumber string  `gorm:"size:50;not null" json:"phoneNumber"`
	Email       string  `gorm:"size:255;not null" json:"email"`
	Address     string  `gorm:"size:500;not null" json:"address"`
	LaborRate   float64 `gorm:"not null" json:"laborRate"` // currency per hour
	WeeklyHours float64 `gorm:"not null" json:"weeklyHours"`

	// Dependents. Declaring them here puts the foreign keys on the child tables.
	Jobs     []Job     `gorm:"foreignKey:EmployeeID;references:EmployeeID;constraint:fk_jobs_employee,OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Expenses []Expense `gorm:"foreignKey:PurchasedBy;references:EmployeeID;constraint:fk_expenses_purchaser,OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Users    []User    `gorm:"foreignKey:EmployeeID;references:EmployeeID;constraint:fk_users_employee,OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

func (Employee) TableName() string        { return "employees" }
func (Employee) Kind() string             { return "Employee" }
func (e *Employee) PrimaryKey() uint      { return e.EmployeeID }
func (e *Employee) SetPrimaryKey(id uint) { e.EmployeeID = id }

func (e *Employee) Validate() error {
	v := make(validation.Violations)
	validation.Required("fName", e.FirstName, v)
	validation.Required("lName", e.LastName, v)
	validation.Required("birthDate", e.BirthDate, v)
	validation.Date("birthDate", e.BirthDate, v)
	validation.Required("phoneNumber", e.PhoneNumber, v)
	validation.Required("email", e.Email, v)
	validation.Email("email", e.Email, v)
	validation.Required("address", e.Address, v)
	validation.NonNegativeFloat("laborRate", e.LaborRate, v)
	validation.RangeFloat("weeklyHours", e.WeeklyHours, 0, 168, v)
	return invalid(e.Kind(), v)
}
