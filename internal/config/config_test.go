package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ammd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.BindAddr)
	assert.Equal(t, 5005, cfg.Server.Port)
	assert.Equal(t, "pebble", cfg.Database.Backend)
	assert.Equal(t, "lz4", cfg.Database.Compression)
	assert.Equal(t, "sqlite", cfg.Journal.Driver)
	assert.True(t, cfg.Journal.Enabled())
	assert.Equal(t, uint64(1_000_000), cfg.Pool.PriceUnit)
	assert.Empty(t, cfg.AdminAccounts)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
admin_accounts = ["op1", "op2"]

[server]
bind_addr = "0.0.0.0"
port = 6006

[database]
backend = "bbolt"
path = "/tmp/ammd-test/db"
compression = "none"

[journal]
driver = "none"

[pool]
price_unit = 1000
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.BindAddr)
	assert.Equal(t, 6006, cfg.Server.Port)
	assert.Equal(t, "bbolt", cfg.Database.Backend)
	assert.Equal(t, "none", cfg.Database.Compression)
	assert.False(t, cfg.Journal.Enabled())
	assert.Equal(t, uint64(1000), cfg.Pool.PriceUnit)
	assert.Equal(t, []string{"op1", "op2"}, cfg.AdminAccounts)
	assert.Equal(t, path, cfg.GetConfigPath())

	// File overrides merge with untouched defaults.
	assert.Equal(t, 30, cfg.Server.RequestTimeout)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("AMMD_SERVER_PORT", "7117")
	t.Setenv("AMMD_DATABASE_BACKEND", "bbolt")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7117, cfg.Server.Port)
	assert.Equal(t, "bbolt", cfg.Database.Backend)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad backend", "[database]\nbackend = \"leveldb\"\n"},
		{"bad compression", "[database]\ncompression = \"zstd\"\n"},
		{"bad port", "[server]\nport = 99999\n"},
		{"bad journal driver", "[journal]\ndriver = \"mysql\"\n"},
		{"journal without dsn", "[journal]\ndriver = \"postgres\"\ndsn = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
