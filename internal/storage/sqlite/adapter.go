package sqlite

import (
	"database/sql"
	"fmt"

	"content-router/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

type Adapter struct {
	*storage.BaseAdapter
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		BaseAdapter: storage.NewBaseAdapter(db, storage.Question),
		config:      config,
	}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS routing_schemes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE COLLATE NOCASE,
			rules TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS providers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			routing_scheme TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_providers_routing_scheme ON providers(routing_scheme)`,
		`CREATE TABLE IF NOT EXISTS content_filters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			expression TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS routed_items (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			scheme_id TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			action TEXT NOT NULL,
			desk TEXT NOT NULL DEFAULT '',
			stage TEXT NOT NULL DEFAULT '',
			macro TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routed_items_item_id ON routed_items(item_id)`,
	}

	for _, query := range queries {
		if _, err := a.DB().Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Store, error) {
	switch cfg := config.(type) {
	case *Config:
		return NewAdapter(cfg)
	case storage.GenericConfig:
		return NewAdapter(&Config{DatabasePath: cfg.String("path")})
	default:
		return nil, fmt.Errorf("invalid config type for SQLite storage")
	}
}

func (f *Factory) GetType() string {
	return "sqlite"
}

func init() {
	storage.Register("sqlite", &Factory{})
}
