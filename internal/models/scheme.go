package models

import (
	"encoding/json"
	"sort"
	"time"
)

// DefaultRuleHandler is the handler used by rules that do not name one.
const DefaultRuleHandler = "desk_fetch_publish"

// DefaultTimeZone is applied to schedules that do not carry a time zone.
const DefaultTimeZone = "UTC"

// RoutingScheme is a named, ordered list of routing rules applied to ingested items.
type RoutingScheme struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Rules     []RoutingRule `json:"rules"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RoutingRule is one conditional step of a routing scheme.
type RoutingRule struct {
	Name     string     `json:"name"`
	Handler  string     `json:"handler,omitempty"`
	Filter   *string    `json:"filter,omitempty"`
	Actions  *ActionSet `json:"actions,omitempty"`
	Schedule *Schedule  `json:"schedule,omitempty"`

	// UnknownFields lists top-level keys seen while decoding that a rule
	// does not accept. Sorted.
	UnknownFields []string `json:"-"`
}

var ruleFields = map[string]struct{}{
	"name":     {},
	"handler":  {},
	"filter":   {},
	"actions":  {},
	"schedule": {},
}

// UnmarshalJSON decodes a rule and records keys outside the permitted set.
func (r *RoutingRule) UnmarshalJSON(data []byte) error {
	type plainRule RoutingRule

	var decoded plainRule
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	for key := range keys {
		if _, ok := ruleFields[key]; !ok {
			decoded.UnknownFields = append(decoded.UnknownFields, key)
		}
	}
	sort.Strings(decoded.UnknownFields)

	*r = RoutingRule(decoded)
	return nil
}

// HandlerName returns the rule's handler id, or fallback when none is set.
func (r RoutingRule) HandlerName(fallback string) string {
	if r.Handler != "" {
		return r.Handler
	}
	if fallback != "" {
		return fallback
	}
	return DefaultRuleHandler
}

// ShouldExit reports whether evaluation stops after this rule is applied.
func (r RoutingRule) ShouldExit() bool {
	return r.Actions != nil && r.Actions.Exit != nil && *r.Actions.Exit
}

// ActionSet describes what a handler does with a matching item.
//
// Fetch, Publish and Exit distinguish "absent" (nil) from "present but empty".
type ActionSet struct {
	Fetch        []FetchAction          `json:"fetch"`
	Publish      []PublishAction        `json:"publish"`
	Exit         *bool                  `json:"exit,omitempty"`
	PreserveDesk bool                   `json:"preserve_desk,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

// HasAny reports whether at least one of fetch, publish or exit is present.
func (a *ActionSet) HasAny() bool {
	if a == nil {
		return false
	}
	return a.Fetch != nil || a.Publish != nil || a.Exit != nil
}

// FetchAction copies an item to a desk/stage, optionally running a macro.
type FetchAction struct {
	Desk  string `json:"desk,omitempty"`
	Stage string `json:"stage,omitempty"`
	Macro string `json:"macro,omitempty"`
}

// PublishAction fetches and publishes an item, optionally to selected targets.
type PublishAction struct {
	Desk              string   `json:"desk,omitempty"`
	Stage             string   `json:"stage,omitempty"`
	Macro             string   `json:"macro,omitempty"`
	TargetSubscribers []string `json:"target_subscribers,omitempty"`
	TargetTypes       []string `json:"target_types,omitempty"`
}

// Schedule restricts a rule to days of the week and a time-of-day window.
type Schedule struct {
	DayOfWeek     []string `json:"day_of_week"`
	HourOfDayFrom string   `json:"hour_of_day_from,omitempty"`
	HourOfDayTo   string   `json:"hour_of_day_to,omitempty"`
	TimeZone      string   `json:"time_zone,omitempty"`
}

// IsEmpty reports whether no field is set.
func (s *Schedule) IsEmpty() bool {
	return s.DayOfWeek == nil && s.HourOfDayFrom == "" && s.HourOfDayTo == "" && s.TimeZone == ""
}

// onlyTimeZone reports whether time_zone is the only populated field.
func (s *Schedule) onlyTimeZone() bool {
	return s.TimeZone != "" && s.DayOfWeek == nil && s.HourOfDayFrom == "" && s.HourOfDayTo == ""
}

// NormalizeSchedule collapses a schedule carrying nothing but a time zone to
// nil and defaults a missing time zone to UTC. An empty schedule is returned
// untouched so validation can reject it.
func NormalizeSchedule(s *Schedule) *Schedule {
	if s == nil || s.IsEmpty() {
		return s
	}
	if s.onlyTimeZone() {
		return nil
	}
	if s.TimeZone == "" {
		s.TimeZone = DefaultTimeZone
	}
	return s
}

// NormalizeSchedules applies NormalizeSchedule to every rule of the scheme.
func (s *RoutingScheme) NormalizeSchedules() {
	for i := range s.Rules {
		s.Rules[i].Schedule = NormalizeSchedule(s.Rules[i].Schedule)
	}
}
