package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hivemind/apps/ingestor/internal/ingest"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"hivemind"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"hivemind"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	EnableAPI          bool `envconfig:"ENABLE_API" default:"true"`
	EnableIngestWorker bool `envconfig:"ENABLE_INGEST_WORKER" default:"true"`

	// Orchestration policy
	ChunkSize             int `envconfig:"INGEST_CHUNK_SIZE" default:"10"`
	MaxRetryAttempts      int `envconfig:"INGEST_MAX_ATTEMPTS" default:"3"`
	InitialBackoffSeconds int `envconfig:"INGEST_INITIAL_BACKOFF_SECONDS" default:"1"`
	MaxBackoffSeconds     int `envconfig:"INGEST_MAX_BACKOFF_SECONDS" default:"60"`
	SingleTimeoutMinutes  int `envconfig:"INGEST_SINGLE_TIMEOUT_MINUTES" default:"5"`
	ChunkTimeoutMinutes   int `envconfig:"INGEST_CHUNK_TIMEOUT_MINUTES" default:"10"`
	MaxConcurrency        int `envconfig:"INGEST_MAX_CONCURRENCY" default:"8"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Server
	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.WeaviateHost == "" {
		return fmt.Errorf("%w: WEAVIATE_HOST", ErrMissingRequired)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("INGEST_CHUNK_SIZE must be >= 1, got %d", c.ChunkSize)
	}
	if c.MaxRetryAttempts < 1 {
		return fmt.Errorf("INGEST_MAX_ATTEMPTS must be >= 1, got %d", c.MaxRetryAttempts)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("INGEST_MAX_CONCURRENCY must be >= 1, got %d", c.MaxConcurrency)
	}
	return nil
}

// IngestPolicy maps the environment knobs onto the orchestrator policy.
func (c *Config) IngestPolicy() ingest.Policy {
	return ingest.Policy{
		ChunkSize:      c.ChunkSize,
		MaxAttempts:    c.MaxRetryAttempts,
		InitialBackoff: time.Duration(c.InitialBackoffSeconds) * time.Second,
		MaxBackoff:     time.Duration(c.MaxBackoffSeconds) * time.Second,
		SingleTimeout:  time.Duration(c.SingleTimeoutMinutes) * time.Minute,
		ChunkTimeout:   time.Duration(c.ChunkTimeoutMinutes) * time.Minute,
		MaxConcurrency: c.MaxConcurrency,
	}
}
