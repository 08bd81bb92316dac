package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alvmarrod/web-sieve/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults to a minimal JSON file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "config.json", `{"seed_urls": ["https://example.com"]}`)

		cfg, err := config.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com"}, cfg.SeedURLs)
		assert.Equal(t, 30000, cfg.MaxPagesPerSite)
		assert.Equal(t, 500, cfg.MaxConcurrentRequests)
		assert.Equal(t, 500, cfg.SaveInterval)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
		assert.Equal(t, config.ModeConcurrent, cfg.Mode)
		assert.Equal(t, config.AnalyzerRich, cfg.Analyzer)
		assert.Equal(t, "scraped_async.json", cfg.CheckpointPath)
		assert.Equal(t, "metrics.json", cfg.MetricsPath)
		assert.True(t, cfg.TallyIncoming())
		assert.Empty(t, cfg.IndexDBPath)
	})

	t.Run("reads YAML", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "crawl.yaml", `
seed_urls:
  - https://a.example
  - https://b.example
mode: sequential
analyzer: tags
max_pages_per_site: 50
tally_incoming_links: false
`)

		cfg, err := config.LoadConfig(path)

		require.NoError(t, err)
		assert.Len(t, cfg.SeedURLs, 2)
		assert.Equal(t, config.ModeSequential, cfg.Mode)
		assert.Equal(t, config.AnalyzerTags, cfg.Analyzer)
		assert.Equal(t, 50, cfg.MaxPagesPerSite)
		assert.False(t, cfg.TallyIncoming())
	})

	t.Run("rejects unknown extension", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "config.toml", `seed_urls = []`)

		_, err := config.LoadConfig(path)

		require.ErrorIs(t, err, config.ErrUnsupportedFileFormat)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "config.json", `{"seed_urls": [`)

		_, err := config.LoadConfig(path)

		require.Error(t, err)
	})

	t.Run("fails on missing file", func(t *testing.T) {
		t.Parallel()

		_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))

		require.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *config.Config {
		cfg := config.Default()
		cfg.SeedURLs = []string{"https://example.com"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"valid", func(*config.Config) {}, nil},
		{"no seeds", func(c *config.Config) { c.SeedURLs = nil }, config.ErrNoSeeds},
		{"relative seed", func(c *config.Config) { c.SeedURLs = []string{"/about"} }, config.ErrInvalidSeed},
		{"ftp seed", func(c *config.Config) { c.SeedURLs = []string{"ftp://example.com"} }, config.ErrInvalidSeed},
		{"zero max pages", func(c *config.Config) { c.MaxPagesPerSite = 0 }, config.ErrInvalidMaxPages},
		{"zero concurrency", func(c *config.Config) { c.MaxConcurrentRequests = 0 }, config.ErrInvalidConcurrency},
		{"zero save interval", func(c *config.Config) { c.SaveInterval = 0 }, config.ErrInvalidSaveInterval},
		{"tiny timeout", func(c *config.Config) { c.RequestTimeoutMs = 10 }, config.ErrInvalidTimeout},
		{"bad mode", func(c *config.Config) { c.Mode = "parallel" }, config.ErrInvalidMode},
		{"bad analyzer", func(c *config.Config) { c.Analyzer = "llm" }, config.ErrInvalidAnalyzer},
		{"negative depth", func(c *config.Config) { c.MaxDepth = -1 }, config.ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Finalize(t *testing.T) {
	t.Parallel()

	t.Run("keeps explicit values", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			SeedURLs:        []string{"https://example.com"},
			MaxPagesPerSite: 5,
			SaveInterval:    2,
		}

		require.NoError(t, cfg.Finalize())
		assert.Equal(t, 5, cfg.MaxPagesPerSite)
		assert.Equal(t, 2, cfg.SaveInterval)
		assert.Equal(t, 500, cfg.MaxConcurrentRequests)
	})

	t.Run("reports missing seeds", func(t *testing.T) {
		t.Parallel()

		err := (&config.Config{}).Finalize()

		require.ErrorIs(t, err, config.ErrNoSeeds)
	})
}
