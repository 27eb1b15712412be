package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	cause := errors.New("pq: insert violates foreign key constraint")
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", NotFound("get", "Customer"), ErrNotFound},
		{"validation", Validation("upsert", "Job", map[string]string{"employeeId": "required"}), ErrValidation},
		{"constraint", Constraint("insert", "Job", "fk_jobs_employee", cause), ErrConstraint},
		{"payment", PaymentFailed("create_payment", 402, "Card declined"), ErrPaymentFailed},
		{"unavailable", Unavailable("get_payment", "Payment", 503, nil), ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			e, ok := As(wrapped)
			require.True(t, ok)
			assert.Same(t, tt.err, e)
		})
	}
}

func TestConstraintKeepsCause(t *testing.T) {
	cause := errors.New("driver says no")
	err := Constraint("delete", "Employee", "fk_jobs_employee", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsConstraint(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "constraint=fk_jobs_employee")
}

func TestNotFoundDetail(t *testing.T) {
	err := NotFound("delete", "Service")
	assert.Equal(t, "Service not found", err.Detail)
}

func TestValidationMessageIsStable(t *testing.T) {
	err := Validation("upsert", "Customer", map[string]string{"lName": "required", "email": "invalid_email"})
	assert.Contains(t, err.Error(), "fields=email=invalid_email,lName=required")
	assert.True(t, IsValidation(err))
}
