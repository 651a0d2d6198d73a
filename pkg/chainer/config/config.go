package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/chainer/pkg/chainer/internalerr"
)

// Config represents the chainer configuration file
type Config struct {
	Log            LogConfig       `yaml:"log"`
	Knowledge      KnowledgeConfig `yaml:"knowledge"`
	QueryCacheSize int             `yaml:"query_cache_size"`
	Metrics        bool            `yaml:"metrics"`
}

// LogConfig selects the logger level and encoding
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// KnowledgeConfig lists knowledge files loaded at startup
type KnowledgeConfig struct {
	Files []string `yaml:"files"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from a YAML file. Missing keys keep their
// Default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks enumerated and numeric fields
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", internalerr.ErrInvalidConfig, c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", internalerr.ErrInvalidConfig, c.Log.Format)
	}

	if c.QueryCacheSize < 0 {
		return fmt.Errorf("%w: query_cache_size must be >= 0, got %d", internalerr.ErrInvalidConfig, c.QueryCacheSize)
	}
	return nil
}
