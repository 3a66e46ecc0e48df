package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingRule_UnmarshalJSON(t *testing.T) {
	t.Run("records unknown fields sorted", func(t *testing.T) {
		var rule RoutingRule
		err := json.Unmarshal([]byte(`{
			"name": "r1",
			"priority": 3,
			"actions": {"exit": true},
			"enabled": true
		}`), &rule)
		require.NoError(t, err)

		assert.Equal(t, "r1", rule.Name)
		assert.Equal(t, []string{"enabled", "priority"}, rule.UnknownFields)
		assert.True(t, rule.ShouldExit())
	})

	t.Run("permitted fields only", func(t *testing.T) {
		var rule RoutingRule
		err := json.Unmarshal([]byte(`{
			"name": "r1",
			"handler": "desk_fetch_publish",
			"filter": "f1",
			"actions": {"fetch": [{"desk": "D1"}]},
			"schedule": {"day_of_week": ["MON"], "time_zone": "Europe/Prague"}
		}`), &rule)
		require.NoError(t, err)

		assert.Empty(t, rule.UnknownFields)
		require.NotNil(t, rule.Filter)
		assert.Equal(t, "f1", *rule.Filter)
		assert.Equal(t, "D1", rule.Actions.Fetch[0].Desk)
		assert.Equal(t, "Europe/Prague", rule.Schedule.TimeZone)
	})

	t.Run("null schedule and filter", func(t *testing.T) {
		var rule RoutingRule
		err := json.Unmarshal([]byte(`{"name": "r1", "filter": null, "schedule": null}`), &rule)
		require.NoError(t, err)
		assert.Nil(t, rule.Filter)
		assert.Nil(t, rule.Schedule)
	})
}

func TestActionSet_HasAny(t *testing.T) {
	exit := false

	tests := []struct {
		name    string
		actions *ActionSet
		want    bool
	}{
		{"nil", nil, false},
		{"empty", &ActionSet{}, false},
		{"only preserve desk", &ActionSet{PreserveDesk: true}, false},
		{"empty fetch list", &ActionSet{Fetch: []FetchAction{}}, true},
		{"publish", &ActionSet{Publish: []PublishAction{{Desk: "D"}}}, true},
		{"exit false", &ActionSet{Exit: &exit}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actions.HasAny())
		})
	}
}

func TestActionSet_PresenceSurvivesJSON(t *testing.T) {
	var actions ActionSet
	require.NoError(t, json.Unmarshal([]byte(`{"fetch": []}`), &actions))
	assert.NotNil(t, actions.Fetch)
	assert.Nil(t, actions.Publish)
	assert.Nil(t, actions.Exit)
	assert.True(t, actions.HasAny())
}

func TestNormalizeSchedule(t *testing.T) {
	t.Run("time zone only collapses to nil", func(t *testing.T) {
		assert.Nil(t, NormalizeSchedule(&Schedule{TimeZone: "UTC"}))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, NormalizeSchedule(nil))
		assert.Nil(t, NormalizeSchedule(NormalizeSchedule(nil)))
	})

	t.Run("missing time zone defaults to UTC", func(t *testing.T) {
		s := NormalizeSchedule(&Schedule{DayOfWeek: []string{"MON"}})
		require.NotNil(t, s)
		assert.Equal(t, "UTC", s.TimeZone)
	})

	t.Run("empty schedule is kept for validation", func(t *testing.T) {
		s := NormalizeSchedule(&Schedule{})
		require.NotNil(t, s)
		assert.True(t, s.IsEmpty())
	})

	t.Run("explicit zone kept", func(t *testing.T) {
		s := NormalizeSchedule(&Schedule{DayOfWeek: []string{"fri"}, TimeZone: "Asia/Tokyo"})
		assert.Equal(t, "Asia/Tokyo", s.TimeZone)
	})
}

func TestRoutingScheme_NormalizeSchedules(t *testing.T) {
	scheme := &RoutingScheme{Rules: []RoutingRule{
		{Name: "a", Schedule: &Schedule{TimeZone: "UTC"}},
		{Name: "b", Schedule: &Schedule{DayOfWeek: []string{"MON"}}},
		{Name: "c"},
	}}

	scheme.NormalizeSchedules()

	assert.Nil(t, scheme.Rules[0].Schedule)
	assert.Equal(t, "UTC", scheme.Rules[1].Schedule.TimeZone)
	assert.Nil(t, scheme.Rules[2].Schedule)
}

func TestRoutingRule_HandlerName(t *testing.T) {
	assert.Equal(t, "custom", RoutingRule{Handler: "custom"}.HandlerName("x"))
	assert.Equal(t, "x", RoutingRule{}.HandlerName("x"))
	assert.Equal(t, DefaultRuleHandler, RoutingRule{}.HandlerName(""))
}

func TestItem_Field(t *testing.T) {
	var nilItem *Item
	assert.Nil(t, nilItem.Field("desk"))

	item := &Item{ID: "1", Fields: map[string]interface{}{"desk": "sports"}}
	assert.Equal(t, "sports", item.Field("desk"))
	assert.Nil(t, item.Field("missing"))
}

func TestRoutingRule_StoredFormKeepsPresence(t *testing.T) {
	rule := RoutingRule{
		Name:     "r1",
		Actions:  &ActionSet{Fetch: []FetchAction{}},
		Schedule: &Schedule{DayOfWeek: []string{}, TimeZone: "UTC"},
	}

	data, err := json.Marshal(rule)
	require.NoError(t, err)

	var decoded RoutingRule
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotNil(t, decoded.Actions.Fetch)
	assert.Nil(t, decoded.Actions.Publish)
	assert.NotNil(t, decoded.Schedule.DayOfWeek)
	assert.Empty(t, decoded.UnknownFields)
}
