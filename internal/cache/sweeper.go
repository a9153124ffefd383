package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically evicts expired entries from a Cache.
type Sweeper struct {
	cron   *cron.Cron
	cache  Cache
	spec   string
	logger *slog.Logger
}

func NewSweeper(c Cache, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cron:   cron.New(),
		cache:  c,
		spec:   fmt.Sprintf("@every %s", interval),
		logger: logger,
	}
}

// Start registers the sweep job and starts the scheduler in the background.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.Sweep); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info("cache sweeper started", "spec", s.spec)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cache sweeper stopped")
}

func (s *Sweeper) Sweep() {
	if n := s.cache.Evict(context.Background()); n > 0 {
		s.logger.Debug("evicted expired cache entries", "count", n)
	}
}
