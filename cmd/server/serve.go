package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/job-feed/internal/api"
	"github.com/baxromumarov/job-feed/internal/core"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stdout)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("config loaded",
		"env", cfg.Server.Env,
		"upstream", cfg.Upstream.BaseURL,
		"timeout", cfg.Upstream.Timeout.String(),
		"batch_size", cfg.Upstream.BatchSize,
		"cache_backend", cfg.Cache.Backend,
		"cache_enabled", cfg.Cache.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobCache, closeCache, err := setupCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Error("failed to set up cache", "error", err)
		return err
	}
	defer closeCache()

	svc := core.NewJobsService(buildAggregator(cfg, logger), jobCache, logger)
	srv := api.NewServer(svc, api.Options{
		Development: cfg.Server.IsDevelopment(),
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return err
	}
	logger.Info("goodbye")
	return nil
}
