package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	PlanID string          `json:"plan_id" validate:"required,max=8"`
	Orders string          `json:"orders" validate:"required,numeric"`
	Price  decimal.Decimal `json:"price" validate:"gt=0"`
	Proof  string          `json:"proof_url" validate:"omitempty,url"`
	Status string          `json:"status" validate:"oneof=pending approved"`
}

func validPayload() payload {
	return payload{
		PlanID: "growth",
		Orders: "290",
		Price:  decimal.NewFromInt(1500),
		Proof:  "https://cdn.example.com/p.png",
		Status: "pending",
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Struct(validPayload()))
}

func TestValidate_FieldErrors(t *testing.T) {
	p := validPayload()
	p.PlanID = ""
	p.Orders = "many"
	p.Price = decimal.Zero
	p.Proof = "not a url"
	p.Status = "lost"

	err := New().Validate(p)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "this field is required", ve.Errors["plan_id"])
	assert.Equal(t, "must be numeric", ve.Errors["orders"])
	assert.Equal(t, "must be greater than 0", ve.Errors["price"])
	assert.Equal(t, "must be a valid URL", ve.Errors["proof_url"])
	assert.Equal(t, "must be one of: pending, approved", ve.Errors["status"])
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", err)))
}

func TestValidate_MaxLength(t *testing.T) {
	p := validPayload()
	p.PlanID = "much-too-long"

	err := Struct(p)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "must be at most 8 characters long", ve.Errors["plan_id"])
}

func TestValidationError_StableMessage(t *testing.T) {
	err := &ValidationError{Errors: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "validation failed: field 'a': one; field 'b': two", err.Error())
}

func TestValidate_NonStruct(t *testing.T) {
	err := Struct("plain string")
	assert.Error(t, err)
	assert.False(t, IsValidationError(err))
}
