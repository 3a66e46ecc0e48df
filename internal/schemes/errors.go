package schemes

import (
	"fmt"
	"strings"

	"content-router/internal/common/errors"
)

// Kind identifies why a scheme mutation was rejected.
type Kind string

// Validation kinds.
const (
	EmptyScheme         Kind = "EmptyScheme"
	InvalidRuleFields   Kind = "InvalidRuleFields"
	MissingRuleName     Kind = "MissingRuleName"
	MissingActions      Kind = "MissingActions"
	UnknownHandler      Kind = "UnknownHandler"
	EmptySchedule       Kind = "EmptySchedule"
	InvalidDayOfWeek    Kind = "InvalidDayOfWeek"
	InvalidFromTime     Kind = "InvalidFromTime"
	InvalidToTime       Kind = "InvalidToTime"
	FromAfterTo         Kind = "FromAfterTo"
	UnknownTimeZone     Kind = "UnknownTimeZone"
	DuplicateRuleName   Kind = "DuplicateRuleName"
	MissingSchemeName   Kind = "MissingSchemeName"
	DuplicateSchemeName Kind = "DuplicateSchemeName"
)

// Conflict kinds.
const (
	SchemeInUse Kind = "SchemeInUse"
)

func invalid(kind Kind, format string, args ...interface{}) *errors.AppError {
	return errors.ValidationError(fmt.Sprintf(format, args...)).WithCode(string(kind))
}

func conflict(kind Kind, format string, args ...interface{}) *errors.AppError {
	return errors.ConflictError(fmt.Sprintf(format, args...)).WithCode(string(kind))
}

// KindOf returns the rejection kind carried by err, or "" when err was not
// produced by this package.
func KindOf(err error) Kind {
	return Kind(errors.GetCode(err))
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
