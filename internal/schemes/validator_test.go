package schemes

import (
	"encoding/json"
	"testing"

	"content-router/internal/common/errors"
	"content-router/internal/models"
	"content-router/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerSet map[string]bool

func (h handlerSet) Has(name string) bool { return h[name] }

func newRule(name string) *testutil.RuleBuilder {
	return testutil.NewRuleBuilder(name)
}

func newScheme(rules ...models.RoutingRule) *models.RoutingScheme {
	return testutil.NewSchemeBuilder("wire").WithRules(rules...).Build()
}

func TestValidator_AcceptsValidScheme(t *testing.T) {
	s := newScheme(
		newRule("r1").WithSchedule(&models.Schedule{
			DayOfWeek:     []string{"mon"},
			HourOfDayFrom: "09:00:00",
			HourOfDayTo:   "17:00:00",
			TimeZone:      "UTC",
		}).Build(),
		newRule("r2").WithActions(&models.ActionSet{Exit: testutil.BoolPtr(false)}).Build(),
		newRule("r3").WithSchedule(&models.Schedule{DayOfWeek: []string{"SAT", "sun"}, HourOfDayTo: "12:00:00"}).Build(),
	)

	v := NewValidator()
	require.NoError(t, v.ValidateCreate(s))
	require.NoError(t, v.ValidateUpdate(s))

	assert.Equal(t, "UTC", s.Rules[2].Schedule.TimeZone)
}

func TestValidator_Kinds(t *testing.T) {
	tests := []struct {
		name    string
		scheme  *models.RoutingScheme
		want    Kind
		message string
	}{
		{
			name:   "missing scheme name",
			scheme: &models.RoutingScheme{Name: " ", Rules: []models.RoutingRule{newRule("r").Build()}},
			want:   MissingSchemeName,
		},
		{
			name:   "no rules",
			scheme: newScheme(),
			want:   EmptyScheme,
		},
		{
			name:    "unknown rule fields",
			scheme:  newScheme(newRule("r").WithUnknownFields("priority", "target").Build()),
			want:    InvalidRuleFields,
			message: `"priority", "target"`,
		},
		{
			name:   "missing rule name",
			scheme: newScheme(newRule("").Build()),
			want:   MissingRuleName,
		},
		{
			name:   "blank rule name",
			scheme: newScheme(newRule("   ").Build()),
			want:   MissingRuleName,
		},
		{
			name:   "missing actions",
			scheme: newScheme(newRule("r").WithActions(nil).Build()),
			want:   MissingActions,
		},
		{
			name:   "actions without fetch publish or exit",
			scheme: newScheme(newRule("r").WithActions(&models.ActionSet{PreserveDesk: true}).Build()),
			want:   MissingActions,
		},
		{
			name:   "empty schedule object",
			scheme: newScheme(newRule("r").WithSchedule(&models.Schedule{}).Build()),
			want:   EmptySchedule,
		},
		{
			name:   "schedule with empty day list",
			scheme: newScheme(newRule("r").WithSchedule(&models.Schedule{DayOfWeek: []string{}, TimeZone: "UTC"}).Build()),
			want:   EmptySchedule,
		},
		{
			name:   "schedule with hours but no days",
			scheme: newScheme(newRule("r").WithSchedule(&models.Schedule{HourOfDayFrom: "09:00:00"}).Build()),
			want:   EmptySchedule,
		},
		{
			name:    "invalid day",
			scheme:  newScheme(newRule("r").WithSchedule(&models.Schedule{DayOfWeek: []string{"mon", "xyz"}}).Build()),
			want:    InvalidDayOfWeek,
			message: `"xyz"`,
		},
		{
			name:    "invalid from",
			scheme:  newScheme(newRule("r").WithSchedule(&models.Schedule{DayOfWeek: []string{"mon"}, HourOfDayFrom: "9am"}).Build()),
			want:    InvalidFromTime,
			message: `"9am"`,
		},
		{
			name:    "invalid to",
			scheme:  newScheme(newRule("r").WithSchedule(&models.Schedule{DayOfWeek: []string{"mon"}, HourOfDayTo: "25:00:00"}).Build()),
			want:    InvalidToTime,
			message: `"25:00:00"`,
		},
		{
			name: "from after to",
			scheme: newScheme(newRule("r").WithSchedule(&models.Schedule{
				DayOfWeek: []string{"mon"}, HourOfDayFrom: "18:00:00", HourOfDayTo: "09:00:00",
			}).Build()),
			want:    FromAfterTo,
			message: "18:00:00",
		},
		{
			name:    "unknown time zone",
			scheme:  newScheme(newRule("r").WithSchedule(&models.Schedule{DayOfWeek: []string{"mon"}, TimeZone: "Mars/Base"}).Build()),
			want:    UnknownTimeZone,
			message: `"Mars/Base"`,
		},
		{
			name:   "host time zone",
			scheme: newScheme(newRule("r").WithSchedule(&models.Schedule{DayOfWeek: []string{"mon"}, TimeZone: "Local"}).Build()),
			want:   UnknownTimeZone,
		},
		{
			name:    "duplicate rule names",
			scheme:  newScheme(newRule("a").Build(), newRule("b").Build(), newRule("a").Build()),
			want:    DuplicateRuleName,
			message: `"a"`,
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(tt.scheme)
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestValidator_EqualFromAndToAccepted(t *testing.T) {
	s := newScheme(newRule("r").WithSchedule(&models.Schedule{
		DayOfWeek: []string{"mon"}, HourOfDayFrom: "12:00:00", HourOfDayTo: "12:00:00",
	}).Build())

	assert.NoError(t, NewValidator().ValidateCreate(s))
}

func TestValidator_TimeZoneOnlyScheduleIsDropped(t *testing.T) {
	s := newScheme(newRule("r").WithSchedule(&models.Schedule{TimeZone: "UTC"}).Build())

	require.NoError(t, NewValidator().ValidateCreate(s))
	assert.Nil(t, s.Rules[0].Schedule)
}

func TestValidator_DuplicateNamesInAnyOrder(t *testing.T) {
	orders := [][]string{
		{"a", "a"},
		{"a", "b", "a"},
		{"b", "a", "a"},
		{"a", "b", "c", "d", "c"},
	}

	v := NewValidator()
	for _, names := range orders {
		rules := make([]models.RoutingRule, 0, len(names))
		for _, n := range names {
			rules = append(rules, newRule(n).Build())
		}
		err := v.ValidateCreate(newScheme(rules...))
		assert.Equal(t, DuplicateRuleName, KindOf(err), "%v", names)
	}
}

func TestValidator_Precedence(t *testing.T) {
	v := NewValidator()

	t.Run("first rule schedule before second rule structure", func(t *testing.T) {
		s := newScheme(
			newRule("a").WithSchedule(&models.Schedule{DayOfWeek: []string{"xyz"}}).Build(),
			newRule("").Build(),
		)
		assert.Equal(t, InvalidDayOfWeek, KindOf(v.ValidateCreate(s)))
	})

	t.Run("structure before duplicate names", func(t *testing.T) {
		s := newScheme(newRule("a").Build(), newRule("a").WithActions(nil).Build())
		assert.Equal(t, MissingActions, KindOf(v.ValidateCreate(s)))
	})

	t.Run("empty scheme before missing scheme name", func(t *testing.T) {
		assert.Equal(t, EmptyScheme, KindOf(v.ValidateCreate(&models.RoutingScheme{})))
		assert.Equal(t, EmptyScheme, KindOf(v.ValidateUpdate(&models.RoutingScheme{ID: "s1", Name: " "})))
	})

	t.Run("missing scheme name before rule structure", func(t *testing.T) {
		s := &models.RoutingScheme{Rules: []models.RoutingRule{newRule("").Build()}}
		assert.Equal(t, MissingSchemeName, KindOf(v.ValidateCreate(s)))
	})

	t.Run("unknown fields before missing name", func(t *testing.T) {
		s := newScheme(newRule("").WithUnknownFields("x").Build())
		assert.Equal(t, InvalidRuleFields, KindOf(v.ValidateCreate(s)))
	})

	t.Run("invalid from before unknown time zone", func(t *testing.T) {
		s := newScheme(newRule("a").WithSchedule(&models.Schedule{
			DayOfWeek: []string{"mon"}, HourOfDayFrom: "x", TimeZone: "Nowhere",
		}).Build())
		assert.Equal(t, InvalidFromTime, KindOf(v.ValidateCreate(s)))
	})
}

func TestValidator_ReportsEveryInvalidDay(t *testing.T) {
	s := newScheme(newRule("a").WithSchedule(&models.Schedule{
		DayOfWeek: []string{"Mon", "xyz", "sun", "funday"},
	}).Build())

	err := NewValidator().ValidateCreate(s)
	require.Equal(t, InvalidDayOfWeek, KindOf(err))
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"xyz", "funday"}, appErr.Context["days"])
}

func TestValidator_UnknownHandler(t *testing.T) {
	v := NewValidator(WithHandlers(handlerSet{"desk_fetch_publish": true, "archive": true}))

	assert.NoError(t, v.ValidateCreate(newScheme(newRule("a").Build(), newRule("b").WithHandler("archive").Build())))

	err := v.ValidateCreate(newScheme(newRule("a").WithHandler("teletype").Build()))
	assert.Equal(t, UnknownHandler, KindOf(err))
	assert.Contains(t, err.Error(), `"teletype"`)

	custom := NewValidator(WithHandlers(handlerSet{"archive": true}), WithDefaultHandler("archive"))
	assert.NoError(t, custom.ValidateCreate(newScheme(newRule("a").Build())))
}

func TestValidator_DecodedDocument(t *testing.T) {
	var s models.RoutingScheme
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "wire",
		"rules": [
			{"name": "r1", "actions": {"fetch": [{"desk": "D1"}]}, "priority": 1}
		]
	}`), &s))

	err := NewValidator().ValidateCreate(&s)
	assert.Equal(t, InvalidRuleFields, KindOf(err))
	assert.Contains(t, err.Error(), `"priority"`)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, Kind(""), KindOf(testutil.ErrTestFailure))
	assert.True(t, IsKind(conflict(SchemeInUse, "x"), SchemeInUse))
	assert.False(t, IsKind(nil, SchemeInUse))
}
