package config

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cognicore/chainer/pkg/chainer/kb"
	"github.com/cognicore/chainer/pkg/chainer/reader"
)

// Loader loads configuration and knowledge files and constructs components
type Loader struct {
	ConfigPath     string
	KnowledgePaths []string

	// LogLevel overrides the configured level when set
	LogLevel string
}

// Components holds all loaded configuration components
type Components struct {
	Config   *Config
	Logger   *zap.Logger
	KB       *kb.KnowledgeBase
	Registry *prometheus.Registry // nil unless metrics are enabled
}

// Load reads all configuration files and returns initialized components.
// Knowledge files named in the config are resolved relative to the config
// file and loaded before KnowledgePaths.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load config
	cfg := Default()
	paths := []string{}
	if l.ConfigPath != "" {
		loaded, err := LoadConfig(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = *loaded

		base := filepath.Dir(l.ConfigPath)
		for _, p := range cfg.Knowledge.Files {
			if !filepath.IsAbs(p) {
				p = filepath.Join(base, p)
			}
			paths = append(paths, p)
		}
	}
	if l.LogLevel != "" {
		cfg.Log.Level = l.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	comp.Config = &cfg
	paths = append(paths, l.KnowledgePaths...)

	// Build logger
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	comp.Logger = logger

	// Load knowledge
	var items []kb.Item
	for _, p := range paths {
		loaded, err := reader.LoadFile(p)
		if err != nil {
			return nil, fmt.Errorf("load knowledge: %w", err)
		}
		logger.Debug("Loaded knowledge file", zap.String("path", p), zap.Int("items", len(loaded)))
		items = append(items, loaded...)
	}
	facts, rules := reader.Split(items)

	opts := []kb.Option{
		kb.WithLogger(logger),
		kb.WithQueryCache(cfg.QueryCacheSize),
	}
	if cfg.Metrics {
		comp.Registry = prometheus.NewRegistry()
		opts = append(opts, kb.WithMetrics(comp.Registry))
	}

	comp.KB, err = kb.New(facts, rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("build knowledge base: %w", err)
	}

	return comp, nil
}
