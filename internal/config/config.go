// Package config loads runtime settings from DAOISM_* environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type (
	Config struct {
		Database Database
		Catalog  string `envconfig:"DAOISM_CATALOG" default:"catalog"`
		Logging  Logging
	}

	Database struct {
		Driver string `envconfig:"DAOISM_DB_DRIVER" default:"sqlite3"`
		DSN    string `envconfig:"DAOISM_DB_DSN" default:"daoism.db"`
	}

	Logging struct {
		Level  string `envconfig:"DAOISM_LOG_LEVEL" default:"info"`
		Format string `envconfig:"DAOISM_LOG_FORMAT" default:"console"`
	}
)

var drivers = map[string]bool{
	"sqlite3":  true,
	"sqlite":   true,
	"postgres": true,
	"pgx":      true,
}

// Init reads the configuration from the environment.
func Init() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects unknown drivers and empty connection strings.
func (c *Config) Validate() error {
	if !drivers[c.Database.Driver] {
		return fmt.Errorf("DAOISM_DB_DRIVER: unsupported driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DAOISM_DB_DSN: must not be empty")
	}
	return nil
}
