package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv loads configuration from environment variables. Values already set
// on the config (defaults or earlier options) are kept when the variable is
// absent.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		c.deriveDatabaseType()
		return nil
	}
}

// WithEnvFile loads configuration from a file (.env, .yaml, .json or .toml,
// chosen by extension) and then overlays process environment variables.
// A missing file is not an error so deployments can rely on env alone.
func WithEnvFile(path string) Option {
	return func(c *ServerConfig) error {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return WithEnv()(c)
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		c.deriveDatabaseType()
		return nil
	}
}

func (c *ServerConfig) deriveDatabaseType() {
	if c.DatabaseURL != "" {
		c.DatabaseType = "postgres"
	} else {
		c.DatabaseType = "memory"
	}
}
