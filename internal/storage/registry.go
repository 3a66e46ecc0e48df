package storage

import (
	"content-router/internal/common/errors"
	"content-router/internal/common/registry"
)

type Registry struct {
	factories *registry.Registry[StorageFactory]
}

func NewRegistry() *Registry {
	return &Registry{
		factories: registry.New[StorageFactory](),
	}
}

// Register adds a factory. It panics when storageType is empty or taken, as
// registration happens from adapter init functions.
func (r *Registry) Register(storageType string, factory StorageFactory) {
	if err := r.factories.Register(storageType, factory); err != nil {
		panic(err)
	}
}

func (r *Registry) Create(storageType string, config StorageConfig) (Store, error) {
	factory, err := r.factories.Get(storageType)
	if err != nil {
		return nil, errors.ConfigError("storage type " + storageType + " not registered")
	}

	return factory.Create(config)
}

func (r *Registry) GetAvailableTypes() []string {
	return r.factories.GetAvailableTypes()
}

func (r *Registry) IsRegistered(storageType string) bool {
	return r.factories.IsRegistered(storageType)
}

var DefaultRegistry = NewRegistry()

func Register(storageType string, factory StorageFactory) {
	DefaultRegistry.Register(storageType, factory)
}

func Create(storageType string, config StorageConfig) (Store, error) {
	return DefaultRegistry.Create(storageType, config)
}

func GetAvailableTypes() []string {
	return DefaultRegistry.GetAvailableTypes()
}
