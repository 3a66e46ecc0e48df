// Package storage provides the document store behind the content router.
//
// Routing schemes, ingest providers, content filters and routed-item records
// are persisted through the Store interface. SQLite and PostgreSQL adapters
// live in sub-packages and register themselves with the default registry, so
// callers select a backend by name:
//
//	import _ "content-router/internal/storage/sqlite"
//
//	store, err := storage.NewStorage(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
// Lookups of missing documents return a not_found AppError.
package storage

import (
	"context"

	"content-router/internal/models"
)

// Store is the persistence contract used by the router, the scheme service
// and the built-in rule handler.
type Store interface {
	// Connection management
	Close() error
	Health() error

	// Routing schemes
	CreateScheme(ctx context.Context, scheme *models.RoutingScheme) error
	GetScheme(ctx context.Context, id string) (*models.RoutingScheme, error)
	// GetSchemeByName matches names case-insensitively.
	GetSchemeByName(ctx context.Context, name string) (*models.RoutingScheme, error)
	ListSchemes(ctx context.Context) ([]*models.RoutingScheme, error)
	UpdateScheme(ctx context.Context, scheme *models.RoutingScheme) error
	DeleteScheme(ctx context.Context, id string) error

	// Ingest providers
	CreateProvider(ctx context.Context, provider *models.Provider) error
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	// IsSchemeReferenced reports whether any provider routes through the scheme.
	IsSchemeReferenced(ctx context.Context, schemeID string) (bool, error)

	// Content filters
	CreateContentFilter(ctx context.Context, filter *models.ContentFilter) error
	GetContentFilter(ctx context.Context, id string) (*models.ContentFilter, error)

	// Routed items written by rule handlers
	CreateRoutedItem(ctx context.Context, item *models.RoutedItem) error
	ListRoutedItems(ctx context.Context, itemID string) ([]*models.RoutedItem, error)
}

type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

// StorageFactory builds a Store from backend specific configuration.
type StorageFactory interface {
	Create(config StorageConfig) (Store, error)
	GetType() string
}

// GenericConfig is a simple map-based implementation of StorageConfig
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil // Basic configs don't need validation
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}

// String returns the value stored under key, or "".
func (gc GenericConfig) String(key string) string {
	if v, ok := gc[key].(string); ok {
		return v
	}
	return ""
}
