package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
}

type Dataset struct {
	// URL is used unless File is set.
	URL  string `envconfig:"DATASET_URL" default:"https://raw.githubusercontent.com/MarceloMFerreira/archives/refs/heads/main/previsoes_tempo.csv"`
	File string `envconfig:"DATASET_FILE"`

	// RefreshInterval controls how often the dataset is reloaded.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"1h"`
	LoadTimeout     time.Duration `envconfig:"DATASET_LOAD_TIMEOUT" default:"30s"`

	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	MaxRetries       int           `envconfig:"HTTP_MAX_RETRIES" default:"3"`
	RetryInterval    time.Duration `envconfig:"HTTP_RETRY_INTERVAL" default:"500ms"`
	MaxRetryInterval time.Duration `envconfig:"HTTP_MAX_RETRY_INTERVAL" default:"5s"`
}

type Store struct {
	MaxHistory int           `envconfig:"STORE_MAX_HISTORY" default:"24"` // 0 = unlimited
	MaxAge     time.Duration `envconfig:"STORE_MAX_AGE" default:"24h"`    // 0 = unlimited
}

type Log struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE"`
}

type AppConfig struct {
	Server  Server
	Dataset Dataset
	Store   Store
	Log     Log

	// VocabularyFile overrides the embedded story vocabulary.
	VocabularyFile string `envconfig:"VOCABULARY_FILE"`
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.Dataset.URL == "" && cfg.Dataset.File == "" {
		return nil, fmt.Errorf("either DATASET_URL or DATASET_FILE must be set")
	}
	if cfg.Dataset.RefreshInterval < 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %s", cfg.Dataset.RefreshInterval)
	}
	if cfg.Dataset.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid HTTP_MAX_RETRIES: %d", cfg.Dataset.MaxRetries)
	}

	return &cfg, nil
}
