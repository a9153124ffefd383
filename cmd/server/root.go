package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/job-feed/internal/cache"
	"github.com/baxromumarov/job-feed/internal/config"
	"github.com/baxromumarov/job-feed/internal/core"
	"github.com/baxromumarov/job-feed/internal/httpx"
	"github.com/baxromumarov/job-feed/internal/scraper"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "job-feed",
	Short:         "Aggregated job search API",
	Long:          "job-feed fetches postings from LinkedIn, Indeed and Google Jobs through a JobSpy sidecar, normalizes, deduplicates and caches them.",
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBFEED_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func setupLogger(dbg bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig() (*config.Config, error) {
	return config.Load(config.ResolvePath(cfgPath))
}

// setupCache builds the configured cache. The returned func releases it.
func setupCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.Cache, func(), error) {
	if !cfg.Enabled {
		logger.Info("response cache disabled")
		return cache.NopCache{}, func() {}, nil
	}

	switch cfg.Backend {
	case config.BackendRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rdb, err := cache.NewRedisClient(pingCtx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("using redis cache", "ttl", cfg.TTL.String())
		return cache.NewRedisCache(rdb, cfg.TTL, logger), func() { _ = rdb.Close() }, nil
	default:
		mem := cache.NewMemoryCache(cfg.TTL)
		sweeper := cache.NewSweeper(mem, cfg.SweepInterval, logger)
		if err := sweeper.Start(); err != nil {
			return nil, nil, err
		}
		logger.Info("using memory cache", "ttl", cfg.TTL.String(), "sweep_interval", cfg.SweepInterval.String())
		return mem, sweeper.Stop, nil
	}
}

func buildAggregator(cfg *config.Config, logger *slog.Logger) *core.Aggregator {
	client := httpx.NewClient("job-feed/1.0", cfg.Upstream.RatePerSecond, cfg.Upstream.Burst)
	fetcher := scraper.NewJobSpyClient(client, cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.Upstream.DescriptionFormat)

	return core.NewAggregator(fetcher, scraper.NewNormalizer(cfg.Normalize.StripHTML), core.AggregatorConfig{
		BatchSize:                cfg.Upstream.BatchSize,
		ResultsPerCall:           cfg.Upstream.ResultsPerCall,
		HoursOld:                 cfg.Upstream.HoursOld,
		Timeout:                  cfg.Upstream.Timeout,
		DefaultLocation:          cfg.Upstream.DefaultLocation,
		CountryIndeed:            cfg.Upstream.CountryIndeed,
		GoogleLocation:           cfg.Upstream.GoogleLocation,
		LinkedInFetchDescription: cfg.Upstream.LinkedInFetchDescription,
	}, logger)
}
