package config

import "errors"

// Validation errors returned by Validate. Callers can match them with errors.Is;
// the offending value is attached with %w wrapping where it helps.
var (
	ErrNoSeeds               = errors.New("seed_urls is required")
	ErrInvalidSeed           = errors.New("invalid seed url")
	ErrInvalidMaxPages       = errors.New("max_pages_per_site must be >= 1")
	ErrInvalidConcurrency    = errors.New("max_concurrent_requests must be >= 1")
	ErrInvalidSaveInterval   = errors.New("save_interval must be >= 1")
	ErrInvalidTimeout        = errors.New("request_timeout_ms must be >= 100")
	ErrInvalidMode           = errors.New("mode must be sequential or concurrent")
	ErrInvalidAnalyzer       = errors.New("analyzer must be rich or tags")
	ErrInvalidLimit          = errors.New("max_depth and max_hosts_per_site must be >= 0")
	ErrUnsupportedFileFormat = errors.New("unsupported config file format")
)
