package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"content-router/internal/models"
)

const (
	// endOfDay is the implicit window end when no hour_of_day_to is given.
	endOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second
)

// ParseHourOfDay parses a 24-hour "HH:MM:SS" string into the offset from
// midnight it denotes.
func ParseHourOfDay(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("hour of day %q: expected HH:MM:SS", s)
	}

	limits := [3]int{23, 59, 59}
	var values [3]int
	for i, part := range parts {
		if len(part) != 2 {
			return 0, fmt.Errorf("hour of day %q: expected HH:MM:SS", s)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("hour of day %q: component %q out of range", s, part)
		}
		values[i] = n
	}

	return time.Duration(values[0])*time.Hour +
		time.Duration(values[1])*time.Minute +
		time.Duration(values[2])*time.Second, nil
}

// LoadLocation resolves a schedule time zone. An empty name means UTC.
// "Local" is rejected because it depends on the host.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	if name == "Local" {
		return nil, fmt.Errorf("time zone %q is host dependent", name)
	}
	return time.LoadLocation(name)
}

// window returns the [start, end) time-of-day bounds of s.
func window(s *models.Schedule) (start, end time.Duration, err error) {
	if s.HourOfDayFrom != "" {
		if start, err = ParseHourOfDay(s.HourOfDayFrom); err != nil {
			return 0, 0, err
		}
	}

	end = endOfDay + time.Minute
	if s.HourOfDayTo != "" {
		if end, err = ParseHourOfDay(s.HourOfDayTo); err != nil {
			return 0, 0, err
		}
		// An end given to the minute covers that whole minute.
		if end%time.Minute == 0 {
			end += time.Minute
		}
	}
	return start, end, nil
}

// sinceMidnight returns the wall-clock offset of t from the start of its day.
func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}

// IsActiveNow reports whether instant falls inside the schedule. A nil
// schedule is always active. A schedule that cannot be evaluated, because its
// zone or hours do not parse, is never active; validation rejects those before
// they are stored.
func IsActiveNow(s *models.Schedule, instant time.Time) bool {
	if s == nil {
		return true
	}

	loc, err := LoadLocation(s.TimeZone)
	if err != nil {
		return false
	}
	local := instant.In(loc)

	if !IsScheduledDay(local, s.DayOfWeek) {
		return false
	}

	start, end, err := window(s)
	if err != nil {
		return false
	}

	now := sinceMidnight(local)
	return now >= start && now < end
}

// ScheduledRules returns the rules whose schedule is active at instant,
// preserving their order. The input slice is not modified.
func ScheduledRules(rules []models.RoutingRule, instant time.Time) []models.RoutingRule {
	scheduled := make([]models.RoutingRule, 0, len(rules))
	for _, rule := range rules {
		if IsActiveNow(rule.Schedule, instant) {
			scheduled = append(scheduled, rule)
		}
	}
	return scheduled
}
