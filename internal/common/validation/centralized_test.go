package validation

import (
	"testing"

	"content-router/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	ProviderID string  `json:"provider_id" validate:"required"`
	Item       *struct {
		ID string `json:"id" validate:"required"`
	} `json:"item" validate:"required"`
	From string   `json:"hour_of_day_from" validate:"omitempty,hour_of_day"`
	Zone string   `json:"time_zone" validate:"omitempty,timezone"`
	Days []string `json:"day_of_week" validate:"omitempty,dive,weekday"`
}

func TestValidateVar_CustomTags(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		tag     string
		wantErr bool
	}{
		{"hour of day", "09:30:00", "hour_of_day", false},
		{"hour of day out of range", "25:00:00", "hour_of_day", true},
		{"hour of day short", "9:30", "hour_of_day", true},
		{"timezone", "Europe/London", "timezone", false},
		{"timezone utc", "UTC", "timezone", false},
		{"timezone unknown", "Nowhere/City", "timezone", true},
		{"timezone local", "Local", "timezone", true},
		{"weekday", "fri", "weekday", false},
		{"weekday unknown", "friday", "weekday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVar(tt.value, tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateStruct(t *testing.T) {
	valid := envelope{
		ProviderID: "p1",
		Item: &struct {
			ID string `json:"id" validate:"required"`
		}{ID: "item-1"},
		From: "08:00:00",
		Zone: "UTC",
		Days: []string{"mon", "SUN"},
	}
	assert.NoError(t, ValidateStruct(valid))

	missing := valid
	missing.ProviderID = ""
	err := ValidateStruct(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'provider_id' is required")

	badDay := valid
	badDay.Days = []string{"mon", "xyz"}
	err = ValidateStruct(badDay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"xyz"`)
}

func TestValidateStructResult(t *testing.T) {
	result := ValidateStructResult(envelope{From: "noon", Zone: "Local"})

	assert.False(t, result.Valid)
	tags := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		tags = append(tags, e.Tag)
	}
	assert.ElementsMatch(t, []string{"required", "required", "hour_of_day", "timezone"}, tags)

	assert.True(t, ValidateStructResult(envelope{
		ProviderID: "p",
		Item: &struct {
			ID string `json:"id" validate:"required"`
		}{ID: "i"},
	}).Valid)
}
