package config

import "fmt"

// ValidateConfig checks the complete configuration for values the daemon
// cannot start with.
func ValidateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateDatabaseConfig(&config.Database); err != nil {
		return fmt.Errorf("database config validation failed: %w", err)
	}
	if err := validateJournalConfig(&config.Journal); err != nil {
		return fmt.Errorf("journal config validation failed: %w", err)
	}
	return nil
}

func validateServerConfig(server *ServerConfig) error {
	if server.Port < 1 || server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", server.Port)
	}
	if server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %d", server.RequestTimeout)
	}
	return nil
}

func validateDatabaseConfig(db *DatabaseConfig) error {
	switch db.Backend {
	case "pebble", "bbolt":
	default:
		return fmt.Errorf("unknown backend %q, expected pebble or bbolt", db.Backend)
	}

	switch db.Compression {
	case "lz4", "none", "":
	default:
		return fmt.Errorf("unknown compression %q, expected lz4 or none", db.Compression)
	}

	if db.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	return nil
}

func validateJournalConfig(j *JournalConfig) error {
	switch j.Driver {
	case "sqlite", "postgres", "none", "":
	default:
		return fmt.Errorf("unknown driver %q, expected sqlite, postgres or none", j.Driver)
	}

	if j.Enabled() && j.DSN == "" {
		return fmt.Errorf("journal dsn cannot be empty when the journal is enabled")
	}
	return nil
}
