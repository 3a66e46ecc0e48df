package routing

import (
	"fmt"
	"sort"

	"content-router/internal/models"
)

// HandlerRegistry maps handler ids to RuleHandlers. It is built once and
// never modified, so concurrent lookups need no locking.
type HandlerRegistry struct {
	handlers map[string]RuleHandler
}

// NewHandlerRegistry registers the given handlers. Names must be non-empty
// and unique.
func NewHandlerRegistry(handlers ...RuleHandler) (*HandlerRegistry, error) {
	r := &HandlerRegistry{handlers: make(map[string]RuleHandler, len(handlers))}

	for _, h := range handlers {
		if h == nil {
			return nil, ErrNilHandler
		}
		name := h.Name()
		if name == "" {
			return nil, ErrEmptyHandlerName
		}
		if _, exists := r.handlers[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHandler, name)
		}
		r.handlers[name] = h
	}

	return r, nil
}

// Get returns the handler registered under id. An empty id resolves to the
// default handler.
func (r *HandlerRegistry) Get(id string) (RuleHandler, error) {
	if id == "" {
		id = models.DefaultRuleHandler
	}
	if r != nil {
		if h, ok := r.handlers[id]; ok {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrHandlerNotRegistered, id)
}

// Has reports whether a handler is registered under id.
func (r *HandlerRegistry) Has(id string) bool {
	_, err := r.Get(id)
	return err == nil
}

// Names returns the registered handler ids in sorted order.
func (r *HandlerRegistry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
