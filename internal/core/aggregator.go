package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/baxromumarov/job-feed/internal/model"
	"github.com/baxromumarov/job-feed/internal/observability"
	"github.com/baxromumarov/job-feed/internal/scraper"
)

const callGoogle = "google"

type AggregatorConfig struct {
	BatchSize                int
	ResultsPerCall           int
	HoursOld                 int
	Timeout                  time.Duration
	DefaultLocation          string
	CountryIndeed            string
	GoogleLocation           string
	LinkedInFetchDescription bool
}

// Aggregator fans a request out to the upstream fetcher, one call per keyword
// batch plus one Google call for a free-text query, and merges the results.
type Aggregator struct {
	fetcher    scraper.Fetcher
	normalizer *scraper.Normalizer
	cfg        AggregatorConfig
	logger     *slog.Logger
}

type upstreamCall struct {
	name string
	req  scraper.SearchRequest
}

type callResult struct {
	call    string
	records []scraper.RawJob
	err     error
}

func NewAggregator(fetcher scraper.Fetcher, normalizer *scraper.Normalizer, cfg AggregatorConfig, logger *slog.Logger) *Aggregator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{fetcher: fetcher, normalizer: normalizer, cfg: cfg, logger: logger}
}

// Aggregate runs every planned call concurrently and waits for all of them.
// A failed or timed-out call is logged and skipped. It returns
// model.ErrAggregationFailed when no call succeeded or no records came back.
func (a *Aggregator) Aggregate(ctx context.Context, params model.FetchJobsParams) ([]model.Job, error) {
	params = params.Normalized()
	calls := a.plan(params)
	if len(calls) == 0 {
		return nil, &model.ValidationError{Message: "Keywords array or query string is required to fetch jobs."}
	}

	results := make([]callResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call upstreamCall) {
			defer wg.Done()
			results[i] = a.run(ctx, call)
		}(i, call)
	}
	wg.Wait()

	var (
		lastErr   error
		succeeded int
		total     int
	)
	for _, res := range results {
		if res.err != nil {
			kind := observability.ClassifyFetchError(res.err)
			a.logger.Warn("upstream call failed", "call", res.call, "kind", kind, "error", res.err)
			observability.IncUpstreamFailure()
			observability.IncError(kind, "upstream")
			lastErr = res.err
			continue
		}
		succeeded++
		total += len(res.records)
	}

	if succeeded == 0 || total == 0 {
		observability.IncAggregation(true)
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrAggregationFailed, lastErr)
		}
		return nil, model.ErrAggregationFailed
	}

	// calls are planned Google first, so Google records win URL collisions
	raws := make([]scraper.RawJob, 0, total)
	for _, res := range results {
		raws = append(raws, res.records...)
	}

	jobs := Dedupe(a.normalizer.NormalizeAll(raws))
	countBySource(jobs)
	observability.IncAggregation(false)

	a.logger.Info("aggregation complete",
		"calls", len(calls),
		"failed", len(calls)-succeeded,
		"raw", total,
		"jobs", len(jobs),
	)
	return jobs, nil
}

// plan builds the calls for params: the Google call first, then one call per
// keyword batch in keyword order.
func (a *Aggregator) plan(params model.FetchJobsParams) []upstreamCall {
	var calls []upstreamCall

	if params.Query != "" {
		calls = append(calls, upstreamCall{
			name: callGoogle,
			req: scraper.SearchRequest{
				Sites:            []string{scraper.SiteGoogle},
				SearchTerm:       params.Query,
				GoogleSearchTerm: params.Query,
				Location:         orDefault(params.Location, a.cfg.GoogleLocation),
				ResultsWanted:    a.cfg.ResultsPerCall,
				HoursOld:         a.cfg.HoursOld,
			},
		})
	}

	for i, batch := range batches(params.Keywords, a.cfg.BatchSize) {
		calls = append(calls, upstreamCall{
			name: fmt.Sprintf("keywords[%d]", i),
			req: scraper.SearchRequest{
				Sites:                    []string{scraper.SiteIndeed, scraper.SiteLinkedIn},
				SearchTerm:               strings.Join(batch, " OR "),
				Location:                 orDefault(params.Location, a.cfg.DefaultLocation),
				ResultsWanted:            a.cfg.ResultsPerCall,
				HoursOld:                 a.cfg.HoursOld,
				CountryIndeed:            a.cfg.CountryIndeed,
				LinkedInFetchDescription: a.cfg.LinkedInFetchDescription,
			},
		})
	}
	return calls
}

// run executes one call under the per-call deadline. The fetcher is raced
// against the deadline so a fetcher that ignores ctx cannot stall the request.
func (a *Aggregator) run(ctx context.Context, call upstreamCall) callResult {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	observability.IncUpstreamCall()
	start := time.Now()
	defer func() {
		observability.ObserveUpstreamDuration(time.Since(start).Seconds())
	}()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{call: call.name, err: &model.UpstreamError{Call: call.name, Err: fmt.Errorf("panic: %v", r)}}
			}
		}()
		records, err := a.fetcher.FetchJobs(ctx, call.req)
		if err != nil {
			err = &model.UpstreamError{Call: call.name, Err: err}
		}
		done <- callResult{call: call.name, records: records, err: err}
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return callResult{call: call.name, err: &model.UpstreamError{Call: call.name, Err: ctx.Err()}}
	}
}

func batches(keywords []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(keywords); start += size {
		end := start + size
		if end > len(keywords) {
			end = len(keywords)
		}
		out = append(out, keywords[start:end])
	}
	return out
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func countBySource(jobs []model.Job) {
	counts := make(map[string]int)
	for _, j := range jobs {
		counts[j.Source]++
	}
	for source, n := range counts {
		observability.AddRecords(source, n)
	}
}
