// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server-level settings. Secrets consumed by the auth
// package (JWT_SECRET, API_MASTER_SECRET, ADMIN_*) are read from the
// environment at call time and are not duplicated here.
type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	GinMode     string `env:"GIN_MODE" envDefault:""`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL string `env:"DATABASE_URL"`
	DataPath    string `env:"DATA_PATH" envDefault:"raidledger.db"`
}

// Load reads a .env file if one exists (current or parent directories, for
// flexibility when run from cmd/ subdirectories) and parses the environment
// into a Config.
func Load() (Config, error) {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
