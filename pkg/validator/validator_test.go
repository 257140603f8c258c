package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=owner finder"`
	Notes string `json:"notes" validate:"max=10"`
}

func TestValidateStructPasses(t *testing.T) {
	require.NoError(t, ValidateStruct(samplePayload{
		Email: "alice@example.com",
		Role:  "owner",
	}))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(samplePayload{Role: "intruder", Notes: "far too long for the cap"})
	require.Error(t, err)

	var failures ValidationErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 3)

	byField := map[string]FieldError{}
	for _, fe := range failures {
		byField[fe.Field] = fe
	}
	require.Contains(t, byField, "email")
	require.Contains(t, byField, "role")
	require.Contains(t, byField, "notes")
	require.Equal(t, "required", byField["email"].Rule)
}

func TestValidationErrorMessages(t *testing.T) {
	require.Equal(t, "email is required",
		FieldError{Field: "email", Rule: "required"}.Message())
	require.Equal(t, "role must be one of: owner, finder",
		FieldError{Field: "role", Rule: "oneof", Param: "owner finder"}.Message())
	require.Equal(t, "notes must be at most 10 characters",
		FieldError{Field: "notes", Rule: "max", Param: "10"}.Message())
}
