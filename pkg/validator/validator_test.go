package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInput struct {
	Title string  `validate:"required,max=10"`
	Value float64 `validate:"min=0,max=5"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(testInput{Title: "hello", Value: 4.5})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(testInput{Value: 3})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Title")
	assert.Equal(t, "is required", fields["Title"])
}

func TestValidate_MaxExceeded(t *testing.T) {
	err := Validate(testInput{Title: "this title is far too long", Value: 3})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Title"], "at most 10")
}

func TestValidate_MultipleFailures(t *testing.T) {
	err := Validate(testInput{Title: "", Value: 7})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Len(t, fields, 2)
	assert.Contains(t, valErr.Error(), "Title")
	assert.Contains(t, valErr.Error(), "Value")
}
