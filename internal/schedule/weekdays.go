// Package schedule decides whether routing rules are active at a given
// instant.
//
// A schedule names the days of the week a rule runs on and, optionally, a
// time-of-day window. Both are evaluated in the schedule's own time zone.
package schedule

import (
	"strings"
	"time"
)

// Canonical weekday names. The index of each name is its weekday number,
// counted from Monday.
var dayNames = [7]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

var dayIndex = func() map[string]int {
	m := make(map[string]int, len(dayNames))
	for i, name := range dayNames {
		m[name] = i
	}
	return m
}()

// WeekdayIndex returns the weekday of t counted from Monday (0) to Sunday (6).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayName returns the canonical short name of t's weekday.
func DayName(t time.Time) string {
	return dayNames[WeekdayIndex(t)]
}

// ParseDayName returns the weekday index for a name such as "mon" or "FRI".
func ParseDayName(name string) (int, bool) {
	idx, ok := dayIndex[strings.ToUpper(strings.TrimSpace(name))]
	return idx, ok
}

// IsValidScheduleDayList reports whether every entry names a weekday.
// An empty list is valid here; a schedule without days is rejected elsewhere.
func IsValidScheduleDayList(names []string) bool {
	for _, name := range names {
		if _, ok := ParseDayName(name); !ok {
			return false
		}
	}
	return true
}

// IsScheduledDay reports whether t falls on one of the named days. t must
// already be in the schedule's time zone. Unknown names never match.
func IsScheduledDay(t time.Time, names []string) bool {
	today := WeekdayIndex(t)
	for _, name := range names {
		if idx, ok := ParseDayName(name); ok && idx == today {
			return true
		}
	}
	return false
}
