package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/baxromumarov/job-feed/internal/scraper"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher answers per site list and records every request it sees.
type mockFetcher struct {
	mu       sync.Mutex
	requests []scraper.SearchRequest
	handle   func(ctx context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error)
}

func (m *mockFetcher) FetchJobs(ctx context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.handle == nil {
		return nil, nil
	}
	return m.handle(ctx, req)
}

func (m *mockFetcher) Requests() []scraper.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]scraper.SearchRequest(nil), m.requests...)
}

func isGoogle(req scraper.SearchRequest) bool {
	return len(req.Sites) == 1 && req.Sites[0] == scraper.SiteGoogle
}

func records(site string, n int, urlPrefix string) []scraper.RawJob {
	out := make([]scraper.RawJob, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, scraper.RawJob{
			"site":    site,
			"title":   fmt.Sprintf("%s job %d", site, i),
			"company": "Acme",
			"job_url": fmt.Sprintf("%s/%s/%d", urlPrefix, site, i),
		})
	}
	return out
}

func testAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		BatchSize:                3,
		ResultsPerCall:           10,
		HoursOld:                 24,
		Timeout:                  time.Second,
		DefaultLocation:          "Lebanon",
		CountryIndeed:            "Lebanon",
		GoogleLocation:           "worldwide",
		LinkedInFetchDescription: true,
	}
}
