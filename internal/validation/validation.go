package validation

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func RequiredID(field string, id uint, v Violations) {
	if id == 0 {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// Email checks the shape of an address; an empty value is left to Required.
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if !emailRegex.MatchString(value) {
		v[field] = "invalid_email"
	}
}

// Date checks a YYYY-MM-DD value; an empty value is left to Required.
func Date(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		v[field] = "invalid_date"
	}
}

// NotBefore flags field when both dates parse and value is earlier than floor.
func NotBefore(field, value, floor string, v Violations) {
	a, errA := time.Parse(DateLayout, value)
	b, errB := time.Parse(DateLayout, floor)
	if errA != nil || errB != nil {
		return
	}
	if a.Before(b) {
		v[field] = "before_start"
	}
}
