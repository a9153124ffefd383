// Package cache stores aggregated job responses for a bounded time.
package cache

import (
	"context"

	"github.com/baxromumarov/job-feed/internal/model"
)

// Cache is safe for concurrent use. Entries are written whole and never
// mutated; the last write for a key wins.
type Cache interface {
	Get(ctx context.Context, key string) (model.JobsResponse, bool)
	Set(ctx context.Context, key string, value model.JobsResponse)
	// Evict drops expired entries and reports how many were removed.
	Evict(ctx context.Context) int
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (model.JobsResponse, bool) {
	return model.JobsResponse{}, false
}

func (NopCache) Set(context.Context, string, model.JobsResponse) {}

func (NopCache) Evict(context.Context) int { return 0 }
