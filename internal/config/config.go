package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds runtime settings for the souvenir service.
// Environment variables are parsed from the SOUVENIR_ prefix,
// e.g. SOUVENIR_HTTP_PORT, SOUVENIR_POSTGRES_DSN.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Relational store. DBDriver "auto" resolves to postgres when a DSN is
	// present, sqlite otherwise (local development).
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"souvenirs.db"`

	// Session tokens (HS256). Never log this.
	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret"`

	// Object store (S3-compatible; BaseEndpoint override supports MinIO).
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint    string `envconfig:"S3_ENDPOINT" default:"http://127.0.0.1:9000"`
	S3AccessKey   string `envconfig:"S3_ACCESS_KEY" default:"admin"`
	S3SecretKey   string `envconfig:"S3_SECRET_KEY" default:""`
	S3AudioBucket string `envconfig:"S3_AUDIO_BUCKET" default:"souvenir-audio"`
	S3ImageBucket string `envconfig:"S3_IMAGE_BUCKET" default:"souvenir-images"`

	// Transcription API (server-side secret).
	TranscribeURL string `envconfig:"TRANSCRIBE_URL" default:"https://api.assemblyai.com"`
	TranscribeKey string `envconfig:"TRANSCRIBE_KEY" default:""`

	// Image generation API (server-side secret).
	ImageGenURL string `envconfig:"IMAGEGEN_URL" default:"https://api.openai.com"`
	ImageGenKey string `envconfig:"IMAGEGEN_KEY" default:""`

	// Ledger node. MintDisabled skips the real mint entirely and always
	// produces mock transaction ids.
	AlgodURL      string `envconfig:"ALGOD_URL" default:""`
	AlgodToken    string `envconfig:"ALGOD_TOKEN" default:""`
	AlgodMnemonic string `envconfig:"ALGOD_MNEMONIC" default:""`
	MintDisabled  bool   `envconfig:"MINT_DISABLED" default:"false"`
}

// ResolveDefaults validates driver selection and derives "auto" values.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires SOUVENIR_POSTGRES_DSN")
	}
	return nil
}

// New creates a Config by parsing SOUVENIR_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SOUVENIR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("transcribe_key_present", cfg.TranscribeKey != "").
		Bool("imagegen_key_present", cfg.ImageGenKey != "").
		Bool("mint_disabled", cfg.MintDisabled).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config for tests: sqlite store, mint disabled,
// empty upstream keys so adapters run in fallback mode.
func NewForTesting() *Config {
	return &Config{
		Environment:  EnvTesting,
		HTTPPort:     8080,
		DBDriver:     "sqlite",
		SQLitePath:   ":memory:",
		JWTSecret:    "test-secret",
		MintDisabled: true,
	}
}

// IsTesting returns true if the environment is set to testing.
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server bind address.
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
