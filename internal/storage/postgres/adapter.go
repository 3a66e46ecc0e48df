package postgres

import (
	"fmt"
	"strconv"

	"content-router/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

type Adapter struct {
	*storage.BaseAdapter
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	connConfig, err := pgx.ParseConfig(config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	db := stdlib.OpenDB(*connConfig)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		BaseAdapter: storage.NewBaseAdapter(db, storage.Dollar),
		config:      config,
	}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS routing_schemes (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    rules TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_routing_schemes_name ON routing_schemes (LOWER(name));

CREATE TABLE IF NOT EXISTS providers (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    routing_scheme VARCHAR(64) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_providers_routing_scheme ON providers (routing_scheme);

CREATE TABLE IF NOT EXISTS content_filters (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    expression TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS routed_items (
    id VARCHAR(64) PRIMARY KEY,
    item_id VARCHAR(255) NOT NULL,
    scheme_id VARCHAR(64) NOT NULL,
    rule_name VARCHAR(255) NOT NULL,
    action VARCHAR(16) NOT NULL,
    desk VARCHAR(255) NOT NULL DEFAULT '',
    stage VARCHAR(255) NOT NULL DEFAULT '',
    macro VARCHAR(255) NOT NULL DEFAULT '',
    payload TEXT NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_routed_items_item_id ON routed_items (item_id);
`

	_, err := a.DB().Exec(schema)
	return err
}

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Store, error) {
	switch cfg := config.(type) {
	case *Config:
		return NewAdapter(cfg)
	case storage.GenericConfig:
		port, _ := strconv.Atoi(cfg.String("port"))
		return NewAdapter(&Config{
			Host:     cfg.String("host"),
			Port:     port,
			Database: cfg.String("database"),
			Username: cfg.String("username"),
			Password: cfg.String("password"),
			SSLMode:  cfg.String("sslmode"),
		})
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	storage.Register("postgres", &Factory{})
}
