// Package config loads application configuration with multi-source
// priority:
//
//  1. Environment variables (FINSIGHT_* prefix, runtime override)
//  2. Config file (~/.finsight/config.yaml)
//  3. Defaults
//
// DATABASE_URL, when set, overrides the individual postgres_* settings;
// cloud deployments usually provide only that. Passwords are never logged.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors, checked with errors.Is.
var (
	ErrConfigNil                = errors.New("configuration is nil")
	ErrInvalidProvider          = errors.New("invalid embedding provider")
	ErrInvalidEmbedderModel     = errors.New("invalid embedder model")
	ErrInvalidEmbedderDimension = errors.New("invalid embedder dimension")
	ErrInvalidPostgresHost      = errors.New("invalid PostgreSQL host")
	ErrInvalidPostgresPort      = errors.New("invalid PostgreSQL port")
	ErrInvalidPostgresDBName    = errors.New("invalid PostgreSQL database name")
	ErrInvalidPostgresSSLMode   = errors.New("invalid PostgreSQL SSL mode")
	ErrInvalidServerAddr        = errors.New("invalid server address")
)

const (
	// DefaultEmbedderModel is the Gemini embedding model. Its native
	// output is 3072 dimensions; we request truncation to
	// DefaultEmbedderDimension, which must match the vector column width
	// in db/migrations.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultEmbedderDimension matches vector(768) in the schema.
	DefaultEmbedderDimension = 768

	// DefaultServerAddr binds the HTTP API to localhost only.
	DefaultServerAddr = "127.0.0.1:8480"
)

// Config holds all application settings.
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error
	LogJSON  bool   `mapstructure:"log_json"`

	// Embedding
	Provider          string  `mapstructure:"provider"` // only "googleai" for now
	EmbedderModel     string  `mapstructure:"embedder_model"`
	EmbedderDimension int     `mapstructure:"embedder_dimension"`
	EmbedRateLimit    float64 `mapstructure:"embed_rate_limit"` // requests/second, 0 = unlimited

	// PostgreSQL
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// HTTP API
	ServerAddr string `mapstructure:"server_addr"`

	// Tracing
	OTLPEndpoint string `mapstructure:"otlp_endpoint"` // empty = tracing disabled
}

// Load reads configuration from defaults, the config file, and the
// environment, then validates it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("provider", "googleai")
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("embedder_dimension", DefaultEmbedderDimension)
	v.SetDefault("embed_rate_limit", 0.0)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "finsight")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_dbname", "finsight")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("server_addr", DefaultServerAddr)
	v.SetDefault("otlp_endpoint", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".finsight"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults and env cover everything.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all settings and returns the first violation, wrapping
// the matching sentinel.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.Provider != "googleai" {
		return fmt.Errorf("%w: %q (supported: googleai)", ErrInvalidProvider, c.Provider)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidEmbedderModel)
	}
	if c.EmbedderDimension <= 0 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidEmbedderDimension, c.EmbedderDimension)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}

	switch c.PostgresSSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	if strings.TrimSpace(c.ServerAddr) == "" {
		return fmt.Errorf("%w: address is empty", ErrInvalidServerAddr)
	}
	return nil
}
