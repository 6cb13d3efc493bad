package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/apperr"
)

type sample struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Budget   float64 `json:"budget" validate:"gt=0"`
}

func TestStructOK(t *testing.T) {
	err := Struct(sample{Name: "A", Email: "a@b.co", Password: "secret", Budget: 1})
	assert.NoError(t, err)
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "nope", Password: "123", Budget: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"this field is required"}, e.Fields["name"])
	assert.Equal(t, []string{"invalid email format"}, e.Fields["email"])
	assert.Equal(t, []string{"length should be greater or equal than 6"}, e.Fields["password"])
	assert.Equal(t, []string{"should be greater than 0"}, e.Fields["budget"])
}
