// Package errs defines the error taxonomy shared by the store, the services,
// the payment adapter and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every *Error carries exactly one of these in Err.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrConstraint          = errors.New("constraint violation")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Error provides detailed error information.
type Error struct {
	Op         string            // operation that failed
	Kind       string            // entity or resource involved, e.g. "Customer"
	Err        error             // one of the kinds above
	Detail     string            // human readable message returned to clients
	Status     int               // upstream status code, if any
	Constraint string            // violated constraint name, if known
	Column     string            // violated column, if known
	Fields     map[string]string // field -> violation code for validation errors
	Cause      error             // underlying error
}

func (e *Error) Error() string {
	parts := []string{e.Op}
	if e.Kind != "" {
		parts = append(parts, "kind="+e.Kind)
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.Constraint != "" {
		parts = append(parts, "constraint="+e.Constraint)
	}
	if e.Column != "" {
		parts = append(parts, "column="+e.Column)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+e.Fields[k])
		}
		parts = append(parts, "fields="+strings.Join(pairs, ","))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Err != nil {
		out = append(out, e.Err)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// NotFound reports a missing entity. The detail reads "<kind> not found".
func NotFound(op, kind string) *Error {
	return &Error{Op: op, Kind: kind, Err: ErrNotFound, Detail: kind + " not found"}
}

// Validation reports field violations detected before any write.
func Validation(op, kind string, fields map[string]string) *Error {
	return &Error{Op: op, Kind: kind, Err: ErrValidation, Detail: "invalid " + strings.ToLower(kind), Fields: fields}
}

// Constraint reports a foreign-key, uniqueness or not-null violation at the store.
func Constraint(op, kind, constraint string, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: ErrConstraint, Constraint: constraint, Detail: "constraint violation", Cause: cause}
}

// PaymentFailed reports a provider rejection with its status and detail preserved.
func PaymentFailed(op string, status int, detail string) *Error {
	return &Error{Op: op, Kind: "Payment", Err: ErrPaymentFailed, Status: status, Detail: detail}
}

// Unavailable reports a transport failure reaching the provider or the store.
func Unavailable(op, kind string, status int, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: ErrUpstreamUnavailable, Status: status, Detail: strings.ToLower(kind) + " unavailable", Cause: cause}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConstraint(err error) bool { return errors.Is(err, ErrConstraint) }
