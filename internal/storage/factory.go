package storage

import (
	"fmt"

	"content-router/internal/common/errors"
	"content-router/internal/config"
)

// NewStorage creates a storage adapter based on configuration. The adapter
// package for cfg.DatabaseType must have been imported for its side effects.
func NewStorage(cfg *config.Config) (Store, error) {
	var storageConfig StorageConfig
	storageType := cfg.DatabaseType

	switch cfg.DatabaseType {
	case "sqlite":
		storageConfig = GenericConfig{
			"type": "sqlite",
			"path": cfg.DatabasePath,
		}

	case "postgres", "postgresql":
		storageType = "postgres"
		storageConfig = GenericConfig{
			"type":     "postgres",
			"host":     cfg.PostgresHost,
			"port":     cfg.PostgresPort,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
		}

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}

	return Create(storageType, storageConfig)
}
