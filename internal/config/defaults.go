package config

import "github.com/spf13/viper"

// setDefaults sets the built-in defaults for every configuration key.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind_addr", "127.0.0.1")
	v.SetDefault("server.port", 5005)
	v.SetDefault("server.request_timeout", 30)

	// Ledger snapshot store defaults
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "/var/lib/ammd/db")
	v.SetDefault("database.compression", "lz4")

	// Event journal defaults
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "/var/lib/ammd/journal.db")
	v.SetDefault("journal.cache_size", 256)

	// Pool defaults
	v.SetDefault("pool.price_unit", 1_000_000)

	v.SetDefault("admin_accounts", []string{})
}
