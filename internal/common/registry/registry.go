// Package registry provides a generic, thread-safe table of factories keyed
// by type name.
//
// Example usage:
//
//	type StorageFactory interface {
//		Create(config StorageConfig) (Store, error)
//		GetType() string
//	}
//
//	factories := registry.New[StorageFactory]()
//	if err := factories.Register("postgres", postgresFactory); err != nil {
//		return err
//	}
//	factory, err := factories.Get("postgres")
package registry

import (
	"fmt"
	"sort"
	"sync"

	"content-router/internal/common/errors"
)

// Factory defines the interface that all factory types must implement
// to be used with the generic registry.
type Factory interface {
	// GetType returns the type identifier for this factory
	GetType() string
}

// Registry is a thread-safe map from type name to factory.
type Registry[T Factory] struct {
	factories map[string]T
	mu        sync.RWMutex
}

// New creates a new empty registry for factories of type T.
func New[T Factory]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]T),
	}
}

// Register adds a factory under factoryType. Empty names and names already
// taken are rejected.
func (r *Registry[T]) Register(factoryType string, factory T) error {
	if factoryType == "" {
		return errors.ValidationError("factory type must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[factoryType]; exists {
		return errors.ConflictError(fmt.Sprintf("factory type %s already registered", factoryType))
	}
	r.factories[factoryType] = factory
	return nil
}

// Get retrieves a factory by its type identifier.
func (r *Registry[T]) Get(factoryType string) (T, error) {
	r.mu.RLock()
	factory, exists := r.factories[factoryType]
	r.mu.RUnlock()

	if !exists {
		var zero T
		return zero, errors.NotFoundError(fmt.Sprintf("factory type %s", factoryType))
	}

	return factory, nil
}

// GetAvailableTypes returns the registered factory types, sorted.
func (r *Registry[T]) GetAvailableTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for factoryType := range r.factories {
		types = append(types, factoryType)
	}
	sort.Strings(types)
	return types
}

// IsRegistered checks if a factory type is registered in the registry.
func (r *Registry[T]) IsRegistered(factoryType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[factoryType]
	return exists
}
