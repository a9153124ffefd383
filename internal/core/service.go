package core

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/baxromumarov/job-feed/internal/cache"
	"github.com/baxromumarov/job-feed/internal/model"
	"github.com/baxromumarov/job-feed/internal/observability"
)

const MessageFetched = "Jobs fetched successfully"

type JobAggregator interface {
	Aggregate(ctx context.Context, params model.FetchJobsParams) ([]model.Job, error)
}

// JobsService answers job requests from the cache or by aggregating.
// Identical concurrent misses share one aggregation.
type JobsService struct {
	agg    JobAggregator
	cache  cache.Cache
	group  singleflight.Group
	logger *slog.Logger
}

func NewJobsService(agg JobAggregator, c cache.Cache, logger *slog.Logger) *JobsService {
	if c == nil {
		c = cache.NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsService{agg: agg, cache: c, logger: logger}
}

// Fetch returns the response for params and whether it was served from cache.
func (s *JobsService) Fetch(ctx context.Context, params model.FetchJobsParams) (model.JobsResponse, bool, error) {
	if err := params.Validate(); err != nil {
		return model.JobsResponse{}, false, err
	}
	params = params.Normalized()
	key := cache.BuildKey(params)

	if resp, ok := s.cache.Get(ctx, key); ok {
		observability.IncCacheHit()
		observability.AddJobsServed(resp.TotalJobs)
		s.logger.Debug("cache hit", "key", key, "jobs", resp.TotalJobs)
		return resp, true, nil
	}
	observability.IncCacheMiss()

	// the shared aggregation must outlive the caller that started it
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		jobs, err := s.agg.Aggregate(detached, params)
		if err != nil {
			return nil, err
		}
		resp := model.JobsResponse{Message: MessageFetched, TotalJobs: len(jobs), Jobs: jobs}
		s.cache.Set(detached, key, resp)
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return model.JobsResponse{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.JobsResponse{}, false, res.Err
		}
		resp := res.Val.(model.JobsResponse)
		observability.AddJobsServed(resp.TotalJobs)
		return resp, false, nil
	}
}
