package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/fentz26/planner/internal/config"
)

// DefaultListen matches config.DefaultAPIAddr so a fresh client finds a fresh server.
const DefaultListen = "127.0.0.1:7466"

// Config holds server settings. Values come from an optional YAML file and
// are overridden by the environment.
type Config struct {
	Listen        string        `yaml:"listen" env:"PLANNER_LISTEN" env-default:"127.0.0.1:7466"`
	DatabaseURL   string        `yaml:"database_url" env:"DATABASE_URL"`
	DBPath        string        `yaml:"db_path" env:"PLANNER_DB"`
	Secret        string        `yaml:"secret" env:"PLANNER_SECRET"`
	AdminPassword string        `yaml:"admin_password" env:"PLANNER_ADMIN_PASSWORD"`
	AppPassword   string        `yaml:"app_password" env:"PLANNER_APP_PASSWORD"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"PLANNER_SESSION_TTL" env-default:"168h"`
}

// LoadConfig reads path when it exists and the environment otherwise.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}

	if cfg.DBPath == "" {
		dir, err := config.Dir()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = filepath.Join(dir, "planner.db")
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	return nil
}
