// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wikilytics/wikiclass/internal/dataset"
	"github.com/wikilytics/wikiclass/pkg/logging"
)

// Config holds the full service configuration.
type Config struct {
	Server  ServerConfig       `yaml:"server"`
	Dataset DatasetConfig      `yaml:"dataset"`
	Logging *logging.LogConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port        string `yaml:"port"`
	CORSOrigins string `yaml:"cors_origins"`
}

// DatasetConfig configures the data source and aggregation.
type DatasetConfig struct {
	Path         string         `yaml:"path"`
	TopLanguages int            `yaml:"top_languages"`
	Schema       dataset.Schema `yaml:"schema"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: "*",
		},
		Dataset: DatasetConfig{
			Path:         "data/sample.csv",
			TopLanguages: 25,
			Schema:       dataset.DefaultSchema(),
		},
		Logging: logging.DefaultLogConfig(),
	}
}

// Load reads the config file at path when it exists, then applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if cfg.Logging == nil {
		cfg.Logging = logging.DefaultLogConfig()
	}
	cfg.applyEnv()

	if cfg.Dataset.Schema.IDColumn == "" || cfg.Dataset.Schema.CategoryColumn == "" {
		return nil, fmt.Errorf("config: schema requires id and category columns")
	}
	return cfg, nil
}

// applyEnv layers environment variables over the file values.
func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.CORSOrigins = getEnv("CORS_ORIGINS", c.Server.CORSOrigins)
	c.Dataset.Path = getEnv("DATASET_PATH", c.Dataset.Path)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)

	if raw := os.Getenv("TOP_LANGUAGES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			c.Dataset.TopLanguages = n
		}
	}
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
