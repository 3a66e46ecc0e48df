// Package schemes guards the write path of routing schemes.
//
// Every create and update passes through the Validator before anything is
// persisted. A rejected document is never partially applied: the caller gets
// the first violation found, as an AppError whose Code is one of the Kind
// constants.
package schemes

import (
	"strings"

	"content-router/internal/common/validation"
	"content-router/internal/models"
	"content-router/internal/schedule"
)

// HandlerLookup reports whether a rule handler is registered.
type HandlerLookup interface {
	Has(name string) bool
}

// Validator checks routing scheme documents.
type Validator struct {
	handlers       HandlerLookup
	defaultHandler string
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithHandlers makes the validator reject rules naming a handler that lookup
// does not know.
func WithHandlers(lookup HandlerLookup) ValidatorOption {
	return func(v *Validator) {
		v.handlers = lookup
	}
}

// WithDefaultHandler sets the handler assumed for rules that name none.
func WithDefaultHandler(name string) ValidatorOption {
	return func(v *Validator) {
		v.defaultHandler = name
	}
}

// NewValidator creates a Validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{defaultHandler: models.DefaultRuleHandler}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateCreate normalizes and checks a scheme about to be created.
func (v *Validator) ValidateCreate(scheme *models.RoutingScheme) error {
	return v.validate(scheme)
}

// ValidateUpdate normalizes and checks the full document a scheme is about
// to be replaced with.
func (v *Validator) ValidateUpdate(scheme *models.RoutingScheme) error {
	return v.validate(scheme)
}

// validate runs the checks in precedence order: rule count, scheme name,
// then each rule's structure followed by its schedule, then name uniqueness.
func (v *Validator) validate(scheme *models.RoutingScheme) error {
	scheme.NormalizeSchedules()

	if len(scheme.Rules) == 0 {
		return invalid(EmptyScheme, "routing scheme must have at least one rule").
			WithContext("scheme_name", scheme.Name)
	}

	if strings.TrimSpace(scheme.Name) == "" {
		return invalid(MissingSchemeName, "routing scheme must have a name")
	}

	for i := range scheme.Rules {
		rule := &scheme.Rules[i]
		if err := v.validateRule(i, rule); err != nil {
			return err
		}
		if err := validateSchedule(rule); err != nil {
			return err
		}
	}

	return validateUniqueNames(scheme.Rules)
}

func (v *Validator) validateRule(index int, rule *models.RoutingRule) error {
	if len(rule.UnknownFields) > 0 {
		return invalid(InvalidRuleFields, "routing rule %d has invalid fields: %s",
			index+1, quoteAll(rule.UnknownFields)).
			WithContext("fields", rule.UnknownFields)
	}

	if strings.TrimSpace(rule.Name) == "" {
		return invalid(MissingRuleName, "routing rule %d must have a name", index+1)
	}

	if !rule.Actions.HasAny() {
		return invalid(MissingActions, "routing rule %q must define at least one of fetch, publish or exit", rule.Name)
	}

	if v.handlers != nil {
		handler := rule.HandlerName(v.defaultHandler)
		if !v.handlers.Has(handler) {
			return invalid(UnknownHandler, "routing rule %q uses unknown handler %q", rule.Name, handler).
				WithContext("handler", handler)
		}
	}

	return nil
}

func validateSchedule(rule *models.RoutingRule) error {
	s := rule.Schedule
	if s == nil {
		return nil
	}

	if s.IsEmpty() || len(s.DayOfWeek) == 0 {
		return invalid(EmptySchedule, "schedule of routing rule %q must name at least one day of the week", rule.Name)
	}

	if bad := invalidDays(s.DayOfWeek); len(bad) > 0 {
		return invalid(InvalidDayOfWeek, "schedule of routing rule %q has invalid days of the week: %s",
			rule.Name, quoteAll(bad)).
			WithContext("days", bad)
	}

	if s.HourOfDayFrom != "" {
		if err := validation.ValidateVar(s.HourOfDayFrom, "hour_of_day"); err != nil {
			return invalid(InvalidFromTime, "schedule of routing rule %q has invalid hour_of_day_from %q, expected HH:MM:SS",
				rule.Name, s.HourOfDayFrom)
		}
	}

	if s.HourOfDayTo != "" {
		if err := validation.ValidateVar(s.HourOfDayTo, "hour_of_day"); err != nil {
			return invalid(InvalidToTime, "schedule of routing rule %q has invalid hour_of_day_to %q, expected HH:MM:SS",
				rule.Name, s.HourOfDayTo)
		}
	}

	if s.HourOfDayFrom != "" && s.HourOfDayTo != "" {
		from, _ := schedule.ParseHourOfDay(s.HourOfDayFrom)
		to, _ := schedule.ParseHourOfDay(s.HourOfDayTo)
		if from > to {
			return invalid(FromAfterTo, "schedule of routing rule %q starts at %s, after it ends at %s",
				rule.Name, s.HourOfDayFrom, s.HourOfDayTo)
		}
	}

	if s.TimeZone != "" {
		if err := validation.ValidateVar(s.TimeZone, "timezone"); err != nil {
			return invalid(UnknownTimeZone, "schedule of routing rule %q has unknown time zone %q",
				rule.Name, s.TimeZone)
		}
	}

	return nil
}

func invalidDays(days []string) []string {
	var bad []string
	for _, day := range days {
		if err := validation.ValidateVar(day, "weekday"); err != nil {
			bad = append(bad, day)
		}
	}
	return bad
}

func validateUniqueNames(rules []models.RoutingRule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, rule := range rules {
		if _, ok := seen[rule.Name]; ok {
			return invalid(DuplicateRuleName, "routing rule name %q is used more than once", rule.Name)
		}
		seen[rule.Name] = struct{}{}
	}
	return nil
}
