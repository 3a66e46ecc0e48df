package routing

import "errors"

var (
	// ErrHandlerNotRegistered is returned when a rule names a handler the registry does not know
	ErrHandlerNotRegistered = errors.New("rule handler not registered")

	// ErrDuplicateHandler is returned when two handlers share a name
	ErrDuplicateHandler = errors.New("duplicate rule handler")

	// ErrEmptyHandlerName is returned when a handler reports an empty name
	ErrEmptyHandlerName = errors.New("rule handler name is empty")

	// ErrNilHandler is returned when a nil handler is registered
	ErrNilHandler = errors.New("rule handler is nil")
)
