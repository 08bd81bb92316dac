package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alvmarrod/web-sieve/internal/version"
	"gopkg.in/yaml.v3"
)

// Crawl modes
const (
	ModeSequential = "sequential"
	ModeConcurrent = "concurrent"
)

// Analyzer strategies
const (
	AnalyzerRich = "rich"
	AnalyzerTags = "tags"
)

// Config holds all runtime configuration parameters
type Config struct {
	SeedURLs              []string `json:"seed_urls" yaml:"seed_urls"`
	MaxPagesPerSite       int      `json:"max_pages_per_site" yaml:"max_pages_per_site"`
	MaxConcurrentRequests int      `json:"max_concurrent_requests" yaml:"max_concurrent_requests"`
	SaveInterval          int      `json:"save_interval" yaml:"save_interval"`
	RequestTimeoutMs      int      `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	Mode                  string   `json:"mode" yaml:"mode"`
	Analyzer              string   `json:"analyzer" yaml:"analyzer"`
	DescriptionFallback   bool     `json:"description_fallback" yaml:"description_fallback"`
	// Pointer so an explicit false in the file survives applyDefaults
	TallyIncomingLinks *bool  `json:"tally_incoming_links" yaml:"tally_incoming_links"`
	MaxDepth           int    `json:"max_depth" yaml:"max_depth"`
	MaxHostsPerSite    int    `json:"max_hosts_per_site" yaml:"max_hosts_per_site"`
	UserAgent          string `json:"user_agent" yaml:"user_agent"`
	CheckpointPath     string `json:"checkpoint_path" yaml:"checkpoint_path"`
	MetricsPath        string `json:"metrics_path" yaml:"metrics_path"`
	IndexDBPath        string `json:"index_db_path" yaml:"index_db_path"`
}

// Default returns a configuration with every default applied and no seeds
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads and validates configuration from a JSON or YAML file.
// The format is picked from the file extension.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ReadConfig decodes a config file without applying defaults or validating,
// so callers can layer flag overrides before Finalize.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileFormat, path)
	}

	return &cfg, nil
}

// Finalize applies defaults for missing values and validates the result
func (c *Config) Finalize() error {
	applyDefaults(c)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RequestTimeout returns the per-fetch timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// TallyIncoming reports whether the incoming-link post-pass is enabled
func (c *Config) TallyIncoming() bool {
	return c.TallyIncomingLinks == nil || *c.TallyIncomingLinks
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.MaxPagesPerSite == 0 {
		cfg.MaxPagesPerSite = 30000
	}
	if cfg.MaxConcurrentRequests == 0 {
		cfg.MaxConcurrentRequests = 500
	}
	if cfg.SaveInterval == 0 {
		cfg.SaveInterval = 500
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 10000
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeConcurrent
	}
	if cfg.Analyzer == "" {
		cfg.Analyzer = AnalyzerRich
	}
	if cfg.TallyIncomingLinks == nil {
		enabled := true
		cfg.TallyIncomingLinks = &enabled
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "web-sieve/" + version.Version
	}
	if cfg.CheckpointPath == "" {
		cfg.CheckpointPath = "scraped_async.json"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.json"
	}
}

// Validate checks that required fields are present and values are sensible
func (c *Config) Validate() error {
	if len(c.SeedURLs) == 0 {
		return ErrNoSeeds
	}
	for _, seed := range c.SeedURLs {
		if err := validateSeed(seed); err != nil {
			return err
		}
	}
	if c.MaxPagesPerSite < 1 {
		return ErrInvalidMaxPages
	}
	if c.MaxConcurrentRequests < 1 {
		return ErrInvalidConcurrency
	}
	if c.SaveInterval < 1 {
		return ErrInvalidSaveInterval
	}
	if c.RequestTimeoutMs < 100 {
		return ErrInvalidTimeout
	}
	if c.Mode != ModeSequential && c.Mode != ModeConcurrent {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.Analyzer != AnalyzerRich && c.Analyzer != AnalyzerTags {
		return fmt.Errorf("%w: %q", ErrInvalidAnalyzer, c.Analyzer)
	}
	if c.MaxDepth < 0 || c.MaxHostsPerSite < 0 {
		return ErrInvalidLimit
	}
	return nil
}

func validateSeed(seed string) error {
	u, err := url.Parse(strings.TrimSpace(seed))
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSeed, seed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidSeed, seed)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w %q: missing host", ErrInvalidSeed, seed)
	}
	return nil
}
