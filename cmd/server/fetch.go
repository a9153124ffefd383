package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/job-feed/internal/cache"
	"github.com/baxromumarov/job-feed/internal/core"
	"github.com/baxromumarov/job-feed/internal/model"
)

var (
	fetchKeywords []string
	fetchLocation string
	fetchQuery    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one aggregation and print the JSON response",
	Long:  "Fetch jobs once through the configured upstream, bypassing the cache, and print the response to stdout.",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringSliceVarP(&fetchKeywords, "keywords", "k", nil, "comma-separated keywords")
	fetchCmd.Flags().StringVarP(&fetchLocation, "location", "l", "", "location filter")
	fetchCmd.Flags().StringVarP(&fetchQuery, "query", "q", "", "free-text Google Jobs query")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := core.NewJobsService(buildAggregator(cfg, logger), cache.NopCache{}, logger)
	resp, _, err := svc.Fetch(ctx, model.FetchJobsParams{
		Keywords: fetchKeywords,
		Location: fetchLocation,
		Query:    fetchQuery,
	})
	if err != nil {
		logger.Error("fetch failed", "error", err)
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
