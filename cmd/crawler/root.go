package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alvmarrod/web-sieve/internal/config"
	"github.com/alvmarrod/web-sieve/internal/version"
	"github.com/spf13/cobra"
)

// defaultConfigPath is read when --config is not given and the file exists
const defaultConfigPath = "config.json"

// NewRootCmd creates the crawler command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawler [seed-url...]",
		Short: "Domain-scoped resumable web crawler",
		Long: `Crawls every page reachable inside the domain of each seed URL, extracts
title, description, text signals and entities from each page, and keeps the
whole result set in a JSON checkpoint so an interrupted crawl can resume.

Examples:
  # Crawl one site with defaults
  crawler https://example.com

  # Crawl two sites one after another with a smaller cap
  crawler --mode sequential --max-pages 200 https://a.example https://b.example

  # Use a configuration file (JSON or YAML)
  crawler -c crawl.yaml`,
		Version:       version.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawlCmd,
	}

	cmd.Flags().StringP("config", "c", "", "Path to a JSON or YAML config file (default config.json if present)")
	cmd.Flags().StringSliceP("seed", "s", nil, "Seed URL, repeatable (positional arguments are seeds too)")
	cmd.Flags().StringP("mode", "m", "", "Site scheduling: sequential or concurrent")
	cmd.Flags().StringP("analyzer", "a", "", "Page analyzer: rich or tags")
	cmd.Flags().IntP("max-pages", "p", 0, "Maximum pages per site")
	cmd.Flags().IntP("concurrency", "n", 0, "Maximum in-flight requests across all sites")
	cmd.Flags().Int("save-interval", 0, "Pages between checkpoint saves")
	cmd.Flags().Int("timeout-ms", 0, "Per-request timeout in milliseconds")
	cmd.Flags().Int("max-depth", 0, "Maximum link depth from the seed (0 = unlimited)")
	cmd.Flags().String("checkpoint", "", "Checkpoint file path")
	cmd.Flags().String("metrics", "", "Metrics file path")
	cmd.Flags().String("index-db", "", "Optional SQLite index path")
	cmd.Flags().Bool("description-fallback", false, "Use the first paragraph when a page has no meta description")
	cmd.Flags().Bool("no-incoming", false, "Skip the incoming link tally")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig reads the config file if any, layers flags and positional
// seeds over it, then applies defaults and validates
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := &config.Config{}
	if path != "" {
		var err error
		if cfg, err = config.ReadConfig(path); err != nil {
			return nil, err
		}
	}

	seeds, _ := flags.GetStringSlice("seed")
	seeds = append(seeds, args...)
	if len(seeds) > 0 {
		cfg.SeedURLs = seeds
	}

	if flags.Changed("mode") {
		cfg.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("analyzer") {
		cfg.Analyzer, _ = flags.GetString("analyzer")
	}
	if flags.Changed("max-pages") {
		cfg.MaxPagesPerSite, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("concurrency") {
		cfg.MaxConcurrentRequests, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("save-interval") {
		cfg.SaveInterval, _ = flags.GetInt("save-interval")
	}
	if flags.Changed("timeout-ms") {
		cfg.RequestTimeoutMs, _ = flags.GetInt("timeout-ms")
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("checkpoint") {
		cfg.CheckpointPath, _ = flags.GetString("checkpoint")
	}
	if flags.Changed("metrics") {
		cfg.MetricsPath, _ = flags.GetString("metrics")
	}
	if flags.Changed("index-db") {
		cfg.IndexDBPath, _ = flags.GetString("index-db")
	}
	if flags.Changed("description-fallback") {
		cfg.DescriptionFallback, _ = flags.GetBool("description-fallback")
	}
	if noIncoming, _ := flags.GetBool("no-incoming"); noIncoming {
		disabled := false
		cfg.TallyIncomingLinks = &disabled
	}

	if err := cfg.Finalize(); err != nil {
		if errors.Is(err, config.ErrNoSeeds) {
			return nil, fmt.Errorf("%w (pass seed URLs as arguments, --seed or seed_urls in the config file)", err)
		}
		return nil, err
	}
	return cfg, nil
}
