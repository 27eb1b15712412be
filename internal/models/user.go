package models

import (
	"strings"

	"github.com/diewo77/fieldservice/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents a login for an employee or a customer.
type User struct {
	UserID   uint   `gorm:"column:user_id;primaryKey" json:"userId"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"password,omitempty"` // bcrypt hash once stored, redacted in responses
	// At most one of EmployeeID / CustomerID is set.
	EmployeeID *uint `gorm:"column:employee_id;index" json:"empId"`
	CustomerID *uint `gorm:"column:customer_id;index" json:"customerId"`
}

func (User) TableName() string        { return "users" }
func (User) Kind() string             { return "User" }
func (u *User) PrimaryKey() uint      { return u.UserID }
func (u *User) SetPrimaryKey(id uint) { u.UserID = id }

func (u *User) Validate() error {
	v := make(validation.Violations)
	validation.Required("email", u.Email, v)
	validation.Email("email", u.Email, v)
	validation.Required("password", u.Password, v)
	optionalID("empId", u.EmployeeID, v)
	optionalID("customerId", u.CustomerID, v)
	if u.EmployeeID != nil && u.CustomerID != nil {
		v["customerId"] = "exclusive_with_empId"
	}
	return invalid(u.Kind(), v)
}

// BeforeSave hashes a plain-text password; stored hashes pass through.
func (u *User) BeforeSave(_ *gorm.DB) error {
	if u.Password == "" || isBcryptHash(u.Password) {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) Redact() { u.Password = "" }

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
