package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"content-router/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, min, sec int) time.Time {
	// January 2024 starts on a Monday, so day 1 is MON.
	return time.Date(2024, 1, day, hour, min, sec, 0, time.UTC)
}

func TestParseHourOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"00:00:00", 0, false},
		{"09:30:15", 9*time.Hour + 30*time.Minute + 15*time.Second, false},
		{"23:59:59", 23*time.Hour + 59*time.Minute + 59*time.Second, false},
		{"24:00:00", 0, true},
		{"12:60:00", 0, true},
		{"12:00:60", 0, true},
		{"9:00:00", 0, true},
		{"09:00", 0, true},
		{"nine", 0, true},
		{"", 0, true},
		{"-1:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHourOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsActiveNow_NilSchedule(t *testing.T) {
	assert.True(t, IsActiveNow(nil, at(3, 4, 5, 6)))
}

func TestIsActiveNow_AllDaysNoHours(t *testing.T) {
	s := &models.Schedule{
		DayOfWeek: []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"},
		TimeZone:  "UTC",
	}

	start := at(1, 0, 0, 0)
	for i := 0; i < 7*24*4; i++ {
		instant := start.Add(time.Duration(i) * 15 * time.Minute)
		assert.True(t, IsActiveNow(s, instant), instant.String())
	}
	assert.True(t, IsActiveNow(s, at(7, 23, 59, 59)))
}

func TestIsActiveNow_WorkingHours(t *testing.T) {
	s := &models.Schedule{
		DayOfWeek:     []string{"mon"},
		HourOfDayFrom: "09:00:00",
		HourOfDayTo:   "17:00:00",
		TimeZone:      "UTC",
	}

	tests := []struct {
		name    string
		instant time.Time
		want    bool
	}{
		{"monday inside", at(1, 10, 0, 0), true},
		{"monday after", at(1, 18, 0, 0), false},
		{"tuesday inside hours", at(2, 10, 0, 0), false},
		{"window start is inclusive", at(1, 9, 0, 0), true},
		{"just before start", at(1, 8, 59, 59), false},
		{"boundary minute included", at(1, 17, 0, 59), true},
		{"after boundary minute", at(1, 17, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActiveNow(s, tt.instant))
		})
	}
}

func TestIsActiveNow_EndWithSeconds(t *testing.T) {
	s := &models.Schedule{
		DayOfWeek:   []string{"mon"},
		HourOfDayTo: "17:00:30",
	}

	assert.True(t, IsActiveNow(s, at(1, 0, 0, 0)))
	assert.True(t, IsActiveNow(s, at(1, 17, 0, 29)))
	assert.False(t, IsActiveNow(s, at(1, 17, 0, 30)))
}

func TestIsActiveNow_OnlyFrom(t *testing.T) {
	s := &models.Schedule{
		DayOfWeek:     []string{"mon"},
		HourOfDayFrom: "20:00:00",
		TimeZone:      "UTC",
	}

	assert.False(t, IsActiveNow(s, at(1, 19, 59, 59)))
	assert.True(t, IsActiveNow(s, at(1, 23, 59, 59)))
	assert.False(t, IsActiveNow(s, at(2, 0, 0, 0)))
}

func TestIsActiveNow_TimeZone(t *testing.T) {
	s := &models.Schedule{
		DayOfWeek:     []string{"mon"},
		HourOfDayFrom: "08:00:00",
		HourOfDayTo:   "09:00:00",
		TimeZone:      "Europe/Prague",
	}

	// 07:30 UTC on a January Monday is 08:30 in Prague.
	assert.True(t, IsActiveNow(s, at(1, 7, 30, 0)))
	assert.False(t, IsActiveNow(s, at(1, 8, 30, 0)))

	late := &models.Schedule{
		DayOfWeek: []string{"tue"},
		TimeZone:  "Asia/Tokyo",
	}
	// Monday 16:00 UTC is already Tuesday in Tokyo.
	assert.True(t, IsActiveNow(late, at(1, 16, 0, 0)))
	assert.False(t, IsActiveNow(late, at(1, 14, 0, 0)))
}

func TestIsActiveNow_UnusableSchedule(t *testing.T) {
	assert.False(t, IsActiveNow(&models.Schedule{DayOfWeek: []string{"mon"}, TimeZone: "Mars/Olympus"}, at(1, 10, 0, 0)))
	assert.False(t, IsActiveNow(&models.Schedule{DayOfWeek: []string{"mon"}, HourOfDayFrom: "bad"}, at(1, 10, 0, 0)))
	assert.False(t, IsActiveNow(&models.Schedule{DayOfWeek: []string{"mon"}, TimeZone: "Local"}, at(1, 10, 0, 0)))
}

func TestScheduledRules_PreservesOrder(t *testing.T) {
	weekdays := &models.Schedule{DayOfWeek: []string{"mon", "tue", "wed", "thu", "fri"}, TimeZone: "UTC"}
	weekend := &models.Schedule{DayOfWeek: []string{"sat", "sun"}, TimeZone: "UTC"}

	rules := []models.RoutingRule{
		{Name: "c", Schedule: weekdays},
		{Name: "a"},
		{Name: "weekend", Schedule: weekend},
		{Name: "b", Schedule: weekdays},
	}

	got := ScheduledRules(rules, at(3, 12, 0, 0))

	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
	assert.Len(t, rules, 4)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Local")
	assert.Error(t, err)

	_, err = LoadLocation("America/New_York")
	assert.NoError(t, err)
}
