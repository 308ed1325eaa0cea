package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Dimension string `validate:"required,olap_dimension"`
	Level     string `validate:"omitempty,time_level"`
	Year      string `validate:"year"`
}

func TestValidate_CustomTags(t *testing.T) {
	require.NoError(t, Validate(sample{Dimension: "satelite", Level: "kuartal", Year: "2024"}))
	require.NoError(t, Validate(sample{Dimension: "location"}))

	err := Validate(sample{Dimension: "weather", Level: "week", Year: "24"})
	require.Error(t, err)

	details := FieldErrors(err)
	assert.Equal(t, "olap_dimension", details["Dimension"])
	assert.Equal(t, "time_level", details["Level"])
	assert.Equal(t, "year", details["Year"])
}
