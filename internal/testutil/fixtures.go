package testutil

import (
	"time"

	"content-router/internal/models"
)

// Monday is 10:00 UTC on Monday 2024-01-01.
var Monday = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// WorkingHours is a Monday 09:00-17:00 UTC schedule.
func WorkingHours() *models.Schedule {
	return &models.Schedule{
		DayOfWeek:     []string{"mon"},
		HourOfDayFrom: "09:00:00",
		HourOfDayTo:   "17:00:00",
		TimeZone:      "UTC",
	}
}

// TextItem returns a plain text item.
func TextItem(id string) *models.Item {
	return &models.Item{
		ID:       id,
		GUID:     "urn:" + id,
		Type:     "text",
		Headline: "Headline " + id,
		Source:   "AAP",
		Fields:   map[string]interface{}{},
	}
}

// TestProvider returns a provider routing through schemeID.
func TestProvider(schemeID string) *models.Provider {
	return &models.Provider{
		ID:            "provider-1",
		Name:          "Wire",
		RoutingScheme: schemeID,
	}
}
