// Package config loads the daemon configuration from defaults, an optional
// TOML file and AMMD_-prefixed environment variables, in that priority order.
package config

import "time"

// Config represents the complete ammd configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Journal  JournalConfig  `toml:"journal" mapstructure:"journal"`
	Pool     PoolConfig     `toml:"pool" mapstructure:"pool"`

	// Accounts allowed to call operator methods.
	AdminAccounts []string `toml:"admin_accounts" mapstructure:"admin_accounts"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig holds the RPC listener settings.
type ServerConfig struct {
	BindAddr       string `toml:"bind_addr" mapstructure:"bind_addr"`
	Port           int    `toml:"port" mapstructure:"port"`
	RequestTimeout int    `toml:"request_timeout" mapstructure:"request_timeout"` // seconds
}

func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// DatabaseConfig holds the ledger snapshot store settings.
type DatabaseConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"` // pebble or bbolt
	Path        string `toml:"path" mapstructure:"path"`
	Compression string `toml:"compression" mapstructure:"compression"` // lz4 or none
}

// JournalConfig holds the relational event journal settings. Driver "none"
// disables the journal.
type JournalConfig struct {
	Driver    string `toml:"driver" mapstructure:"driver"` // sqlite, postgres or none
	DSN       string `toml:"dsn" mapstructure:"dsn"`
	CacheSize int    `toml:"cache_size" mapstructure:"cache_size"`
}

func (j JournalConfig) Enabled() bool {
	return j.Driver != "" && j.Driver != "none"
}

// PoolConfig holds the pricing settings.
type PoolConfig struct {
	// PriceUnit is the canonical input size used for the informational
	// price snapshot, in the smallest unit of the asset.
	PriceUnit uint64 `toml:"price_unit" mapstructure:"price_unit"`
}

// GetConfigPath returns the path of the loaded configuration file, if any.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
