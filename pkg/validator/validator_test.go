package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.True(t, ValidateEmail("  padded@example.com  "))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("@example.com"))
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"required,min=2"`
	}

	require.NoError(t, ValidateStruct(form{Email: "a@b.test", Name: "ok"}))

	err := ValidateStruct(form{Email: "bad", Name: "x"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)

	// Field names come from json tags.
	assert.Equal(t, "email", failures[0].Field)
	assert.Equal(t, "name", failures[1].Field)
	assert.Contains(t, err.Error(), "email failed on email")
}
