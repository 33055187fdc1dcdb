package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host" env:"GYMTRACK_HOST"`
	Port int    `toml:"port" env:"GYMTRACK_PORT"`

	// logging
	LogLevel      string `toml:"log_level" env:"GYMTRACK_LOG_LEVEL"`
	LogsPath      string `toml:"logs_path" env:"GYMTRACK_LOGS_PATH"`
	LogToStdout   bool   `toml:"log_to_stdout" env:"GYMTRACK_LOG_TO_STDOUT"`
	SentryEnabled bool   `toml:"sentry_enabled" env:"GYMTRACK_SENTRY_ENABLED"`

	// postgres
	PostgresHost   string `toml:"postgres_host" env:"GYMTRACK_POSTGRES_HOST"`
	PostgresPort   string `toml:"postgres_port" env:"GYMTRACK_POSTGRES_PORT"`
	PostgresDBName string `toml:"postgres_db_name" env:"GYMTRACK_POSTGRES_DB_NAME"`

	// exercise images are saved here and served from /uploads
	UploadsRootPath string `toml:"uploads_root_path" env:"GYMTRACK_UPLOADS_ROOT_PATH"`

	// prometheus metrics listener
	PrometheusMetricsHost string `toml:"prometheus_metrics_host" env:"GYMTRACK_PROM_HOST"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port" env:"GYMTRACK_PROM_PORT"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML config file, picks the section for the given
// environment, then applies env var overrides on top of it.
func Load(env, path string) (*Config, error) {
	var configToml Toml
	if _, err := toml.DecodeFile(path, &configToml); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := configToml.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] empty", env)
	}

	cfg.Environment = env

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("process env overrides: %w", err)
	}

	return cfg, nil
}
