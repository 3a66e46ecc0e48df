package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Host: "db", Database: "content_router", Username: "router"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "prefer", cfg.SSLMode)

	assert.Error(t, (&Config{Database: "d", Username: "u"}).Validate())
	assert.Error(t, (&Config{Host: "h", Username: "u"}).Validate())
	assert.Error(t, (&Config{Host: "h", Database: "d"}).Validate())
}

func TestConfig_ConnectionStringRoundTrip(t *testing.T) {
	cfg := &Config{
		Host:     "db.internal",
		Port:     6543,
		Database: "routing",
		Username: "router",
		Password: "p@ss word",
		SSLMode:  "require",
	}

	parsed, err := NewConfigFromURL(cfg.GetConnectionString())
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "postgres", cfg.GetType())
	assert.NoError(t, cfg.Validate())
}
