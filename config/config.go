// Package config provides configuration loading and management for code2vec.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/code2vec/pathctx"
)

// Config represents the complete code2vec configuration
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Repo       RepoConfig       `yaml:"repo"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ExtractionConfig configures path-context extraction
type ExtractionConfig struct {
	// MaxLength is the maximum number of edges between path endpoints (default: 5)
	MaxLength int `yaml:"max_length"`
	// MaxWidth is the maximum leaf-index span of a pair (default: 2)
	MaxWidth int `yaml:"max_width"`
	// TokenPolicy renders interior nodes: internal_type or roles
	TokenPolicy string `yaml:"token_policy"`
	// LeafPolicy renders endpoints: token, internal_type or roles
	LeafPolicy string `yaml:"leaf_policy"`
	// NoopKinds are leaf kinds that never become path endpoints
	NoopKinds []string `yaml:"noop_kinds"`
	// IncludeAnonymous keeps anonymous grammar tokens as leaves
	IncludeAnonymous bool `yaml:"include_anonymous"`
}

// RepoConfig configures the repository settings
type RepoConfig struct {
	// Path is the repository root path (auto-detected from git if empty)
	Path string `yaml:"path"`
	// Include are doublestar patterns of files to extract, relative to Path
	Include []string `yaml:"include"`
	// Exclude are doublestar patterns of files to skip
	Exclude []string `yaml:"exclude"`
}

// PipelineConfig configures batch extraction
type PipelineConfig struct {
	// Workers is the number of files extracted concurrently
	Workers int `yaml:"workers"`
	// CacheSize is the number of file results kept by content hash (0 disables)
	CacheSize int `yaml:"cache_size"`
	// Debounce is how long the watcher waits for more changes
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			MaxLength:   5,
			MaxWidth:    2,
			TokenPolicy: pathctx.PolicyInternalType,
			LeafPolicy:  pathctx.PolicyToken,
			NoopKinds:   []string{"comment", "line_comment", "block_comment", "NoopLine", "SameLineNoops"},
		},
		Repo: RepoConfig{
			Path:    "", // Auto-detect
			Include: []string{"**/*"},
			Exclude: []string{"vendor/**", "node_modules/**", ".git/**"},
		},
		Pipeline: PipelineConfig{
			Workers:   4,
			CacheSize: 1024,
			Debounce:  100 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Extraction.Options(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if len(c.Repo.Include) == 0 {
		return fmt.Errorf("repo.include must not be empty")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}
	if c.Pipeline.CacheSize < 0 {
		return fmt.Errorf("pipeline.cache_size must not be negative")
	}
	if c.Pipeline.Debounce < 0 {
		return fmt.Errorf("pipeline.debounce must not be negative")
	}
	return nil
}

// Options builds validated extraction options from the configuration.
func (e ExtractionConfig) Options() (pathctx.Options, error) {
	if e.TokenPolicy == pathctx.PolicyToken {
		return pathctx.Options{}, fmt.Errorf("token_policy %q only applies to leaves: %w", e.TokenPolicy, pathctx.ErrValidation)
	}
	tokenFn, err := pathctx.TokenPolicy(e.TokenPolicy)
	if err != nil {
		return pathctx.Options{}, fmt.Errorf("token_policy: %w", err)
	}
	leafFn, err := pathctx.TokenPolicy(e.LeafPolicy)
	if err != nil {
		return pathctx.Options{}, fmt.Errorf("leaf_policy: %w", err)
	}

	opts := pathctx.Options{
		MaxLength:     e.MaxLength,
		MaxWidth:      e.MaxWidth,
		TokenFunc:     tokenFn,
		LeafTokenFunc: leafFn,
	}
	if len(e.NoopKinds) > 0 {
		opts.NoopFilter = pathctx.NoopKinds(e.NoopKinds...)
	}
	if err := opts.Validate(); err != nil {
		return pathctx.Options{}, err
	}
	return opts, nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.ApplyFile(path); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyFile decodes a YAML file over the current values. Keys absent from
// the file keep their value; keys present replace it, zero values included.
// The config is left unchanged when the file cannot be read or parsed.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// yaml.v3 allocates fresh slices when decoding sequences, so a shallow
	// copy never writes through to c.
	next := *c
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	*c = next
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
// It backs command-line overrides, where an unset flag is its zero value; file
// layers go through ApplyFile so they can set zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Extraction
	if other.Extraction.MaxLength != 0 {
		c.Extraction.MaxLength = other.Extraction.MaxLength
	}
	if other.Extraction.MaxWidth != 0 {
		c.Extraction.MaxWidth = other.Extraction.MaxWidth
	}
	if other.Extraction.TokenPolicy != "" {
		c.Extraction.TokenPolicy = other.Extraction.TokenPolicy
	}
	if other.Extraction.LeafPolicy != "" {
		c.Extraction.LeafPolicy = other.Extraction.LeafPolicy
	}
	if len(other.Extraction.NoopKinds) > 0 {
		c.Extraction.NoopKinds = other.Extraction.NoopKinds
	}
	if other.Extraction.IncludeAnonymous {
		c.Extraction.IncludeAnonymous = true
	}

	// Repo
	if other.Repo.Path != "" {
		c.Repo.Path = other.Repo.Path
	}
	if len(other.Repo.Include) > 0 {
		c.Repo.Include = other.Repo.Include
	}
	if len(other.Repo.Exclude) > 0 {
		c.Repo.Exclude = other.Repo.Exclude
	}

	// Pipeline
	if other.Pipeline.Workers != 0 {
		c.Pipeline.Workers = other.Pipeline.Workers
	}
	if other.Pipeline.CacheSize != 0 {
		c.Pipeline.CacheSize = other.Pipeline.CacheSize
	}
	if other.Pipeline.Debounce != 0 {
		c.Pipeline.Debounce = other.Pipeline.Debounce
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}
