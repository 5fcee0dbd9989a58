// Package config loads the application configuration from a JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"recipematch/internal/recipe"
)

// Config represents the application configuration. Values from the JSON
// file are overridden by the environment variables that are set.
type Config struct {
	Addr         string   `json:"addr" env:"RECIPEMATCH_ADDR"`
	DBDriver     string   `json:"db_driver" env:"RECIPEMATCH_DB_DRIVER"`
	DatabaseURL  string   `json:"DATABASE_URL" env:"DATABASE_URL"`
	Migrate      bool     `json:"migrate" env:"RECIPEMATCH_MIGRATE"`
	AllowOrigins []string `json:"allow_origins" env:"RECIPEMATCH_ALLOW_ORIGINS" envSeparator:","`

	LogLevel  string `json:"log_level" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format" env:"LOG_FORMAT"`

	Neighbors   int    `json:"neighbors" env:"RECIPEMATCH_NEIGHBORS"`
	MaxResults  int    `json:"max_results" env:"RECIPEMATCH_MAX_RESULTS"`
	RequireAll  bool   `json:"require_all" env:"RECIPEMATCH_REQUIRE_ALL"`
	Metric      string `json:"metric" env:"RECIPEMATCH_METRIC"`
	CacheSize   int    `json:"cache_size" env:"RECIPEMATCH_CACHE_SIZE"`
	Suggestions int    `json:"suggestions" env:"RECIPEMATCH_SUGGESTIONS"`

	ImagesDir      string `json:"images_dir" env:"RECIPEMATCH_IMAGES_DIR"`
	ThumbnailWidth uint   `json:"thumbnail_width" env:"RECIPEMATCH_THUMBNAIL_WIDTH"`

	RequestTimeoutSeconds int `json:"request_timeout_seconds" env:"RECIPEMATCH_REQUEST_TIMEOUT_SECONDS"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Addr:                  ":8080",
		DBDriver:              recipe.DriverSQLite,
		DatabaseURL:           "recipes.db",
		Migrate:               true,
		AllowOrigins:          []string{"http://localhost:8081"},
		LogLevel:              "info",
		LogFormat:             "json",
		Neighbors:             5,
		MaxResults:            5,
		RequireAll:            true,
		Metric:                "cosine",
		CacheSize:             4,
		Suggestions:           3,
		ImagesDir:             "images",
		ThumbnailWidth:        320,
		RequestTimeoutSeconds: 5,
	}
}

// Load reads path on top of the defaults, applies the environment and
// validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to unmarshal %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.DBDriver {
	case recipe.DriverSQLite, recipe.DriverPostgres:
	default:
		return fmt.Errorf("invalid db_driver %q: want %q or %q", c.DBDriver, recipe.DriverSQLite, recipe.DriverPostgres)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Neighbors <= 0 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.Suggestions < 0 {
		return fmt.Errorf("suggestions must not be negative, got %d", c.Suggestions)
	}
	if c.ThumbnailWidth == 0 {
		return errors.New("thumbnail_width must be positive")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	return nil
}
