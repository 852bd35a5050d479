package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	TargetEmail string `json:"targetEmail" validate:"required,email"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=viewer editor"`
	Internal    string `json:"-" validate:"required"`
}

func TestValidate_OK(t *testing.T) {
	assert.Nil(t, Validate(sample{TargetEmail: "bob@example.com", Internal: "x"}))
}

func TestValidate_UsesJSONNames(t *testing.T) {
	errs := Validate(sample{TargetEmail: "not-an-email", Role: "owner"})

	assert.Equal(t, map[string]string{
		"targetEmail": "email",
		"role":        "oneof",
		"Internal":    "required",
	}, errs)
}

func TestValidate_NonStruct(t *testing.T) {
	errs := Validate("plain string")
	assert.Contains(t, errs, "_")
}
