package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/job-feed/internal/model"
	"github.com/baxromumarov/job-feed/internal/scraper"
)

func newTestAggregator(f scraper.Fetcher, cfg AggregatorConfig) *Aggregator {
	return NewAggregator(f, scraper.NewNormalizer(false), cfg, discardLogger())
}

func TestAggregator_Plan(t *testing.T) {
	a := newTestAggregator(&mockFetcher{}, testAggregatorConfig())

	calls := a.plan(model.FetchJobsParams{
		Keywords: []string{"a", "b", "c", "d", "e", "f", "g"},
		Query:    "react jobs in beirut",
	})
	require.Len(t, calls, 4)

	google := calls[0].req
	assert.Equal(t, callGoogle, calls[0].name)
	assert.Equal(t, []string{scraper.SiteGoogle}, google.Sites)
	assert.Equal(t, "react jobs in beirut", google.SearchTerm)
	assert.Equal(t, "react jobs in beirut", google.GoogleSearchTerm)
	assert.Equal(t, "worldwide", google.Location)

	terms := []string{calls[1].req.SearchTerm, calls[2].req.SearchTerm, calls[3].req.SearchTerm}
	assert.Equal(t, []string{"a OR b OR c", "d OR e OR f", "g"}, terms)

	kw := calls[1].req
	assert.Equal(t, []string{scraper.SiteIndeed, scraper.SiteLinkedIn}, kw.Sites)
	assert.Equal(t, "Lebanon", kw.Location)
	assert.Equal(t, "Lebanon", kw.CountryIndeed)
	assert.Equal(t, 10, kw.ResultsWanted)
	assert.Equal(t, 24, kw.HoursOld)
	assert.True(t, kw.LinkedInFetchDescription)
	assert.False(t, kw.IsRemote)
}

func TestAggregator_PlanLocationOverride(t *testing.T) {
	a := newTestAggregator(&mockFetcher{}, testAggregatorConfig())

	calls := a.plan(model.FetchJobsParams{Keywords: []string{"go"}, Query: "go", Location: "Beirut"})
	require.Len(t, calls, 2)
	assert.Equal(t, "Beirut", calls[0].req.Location)
	assert.Equal(t, "Beirut", calls[1].req.Location)
}

func TestAggregator_LinkedInAndIndeedCombined(t *testing.T) {
	f := &mockFetcher{handle: func(_ context.Context, _ scraper.SearchRequest) ([]scraper.RawJob, error) {
		return append(records("linkedin", 5, "https://jobs.example"), records("indeed", 3, "https://jobs.example")...), nil
	}}
	a := newTestAggregator(f, testAggregatorConfig())

	jobs, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"react"}})
	require.NoError(t, err)
	assert.Len(t, jobs, 8)
	assert.Len(t, f.Requests(), 1)
}

func TestAggregator_GoogleWinsURLCollision(t *testing.T) {
	f := &mockFetcher{handle: func(_ context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
		if isGoogle(req) {
			return []scraper.RawJob{{"site": "google", "title": "From Google", "job_url": "https://x.example/shared"}}, nil
		}
		return []scraper.RawJob{{"site": "linkedin", "title": "From LinkedIn", "job_url": "https://x.example/shared"}}, nil
	}}
	a := newTestAggregator(f, testAggregatorConfig())

	jobs, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"react"}, Query: "react"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "google", jobs[0].Source)
	assert.Equal(t, "From Google", jobs[0].Title)
}

func TestAggregator_OrderIsFixedNotCompletion(t *testing.T) {
	f := &mockFetcher{handle: func(_ context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
		if isGoogle(req) {
			time.Sleep(30 * time.Millisecond)
			return records("google", 1, "https://g.example"), nil
		}
		return records("indeed", 1, "https://i.example/"+req.SearchTerm), nil
	}}
	a := newTestAggregator(f, testAggregatorConfig())

	jobs, err := a.Aggregate(context.Background(), model.FetchJobsParams{
		Keywords: []string{"a", "b", "c", "d"},
		Query:    "q",
	})
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "google", jobs[0].Source)
	assert.Contains(t, jobs[1].JobURL, "a OR b OR c")
	assert.Contains(t, jobs[2].JobURL, "/d/")
}

func TestAggregator_GoogleTimeoutAndEmptyKeywordsFails(t *testing.T) {
	cfg := testAggregatorConfig()
	cfg.Timeout = 50 * time.Millisecond

	f := &mockFetcher{handle: func(ctx context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
		if isGoogle(req) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, nil
	}}
	a := newTestAggregator(f, cfg)

	_, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"react"}, Query: "react"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAggregationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var ue *model.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, callGoogle, ue.Call)
}

func TestAggregator_GoogleTimeoutWithKeywordResultsSucceeds(t *testing.T) {
	cfg := testAggregatorConfig()
	cfg.Timeout = 50 * time.Millisecond

	f := &mockFetcher{handle: func(ctx context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
		if isGoogle(req) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return records("linkedin", 2, "https://l.example"), nil
	}}
	a := newTestAggregator(f, cfg)

	jobs, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"react"}, Query: "react"})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Equal(t, "linkedin", j.Source)
	}
}

func TestAggregator_FetcherIgnoringContextIsCutOff(t *testing.T) {
	cfg := testAggregatorConfig()
	cfg.Timeout = 50 * time.Millisecond

	release := make(chan struct{})
	defer close(release)

	f := &mockFetcher{handle: func(_ context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
		if isGoogle(req) {
			<-release
			return records("google", 1, "https://g.example"), nil
		}
		return records("indeed", 1, "https://i.example"), nil
	}}
	a := newTestAggregator(f, cfg)

	start := time.Now()
	jobs, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"go"}, Query: "go"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, jobs, 1)
	assert.Equal(t, "indeed", jobs[0].Source)
}

func TestAggregator_PartialFailure(t *testing.T) {
	f := &mockFetcher{handle: func(_ context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
		if req.SearchTerm == "a OR b OR c" {
			return nil, errors.New("upstream exploded")
		}
		return records("indeed", 2, "https://i.example"), nil
	}}
	a := newTestAggregator(f, testAggregatorConfig())

	jobs, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"a", "b", "c", "d"}})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Len(t, f.Requests(), 2)
}

func TestAggregator_AllCallsFail(t *testing.T) {
	f := &mockFetcher{handle: func(context.Context, scraper.SearchRequest) ([]scraper.RawJob, error) {
		return nil, errors.New("connection refused")
	}}
	a := newTestAggregator(f, testAggregatorConfig())

	_, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"a", "b", "c", "d"}, Query: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAggregationFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAggregator_ZeroRecordsFails(t *testing.T) {
	a := newTestAggregator(&mockFetcher{}, testAggregatorConfig())

	_, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"rare"}})
	assert.ErrorIs(t, err, model.ErrAggregationFailed)
}

func TestAggregator_PanickingFetcherIsAFailedCall(t *testing.T) {
	f := &mockFetcher{handle: func(_ context.Context, req scraper.SearchRequest) ([]scraper.RawJob, error) {
		if isGoogle(req) {
			panic("bad record")
		}
		return records("linkedin", 1, "https://l.example"), nil
	}}
	a := newTestAggregator(f, testAggregatorConfig())

	jobs, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{"go"}, Query: "go"})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestAggregator_InvalidParams(t *testing.T) {
	f := &mockFetcher{}
	a := newTestAggregator(f, testAggregatorConfig())

	_, err := a.Aggregate(context.Background(), model.FetchJobsParams{Keywords: []string{" "}})
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Empty(t, f.Requests())
}

func TestBatches(t *testing.T) {
	assert.Nil(t, batches(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, batches([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{{"a"}}, batches([]string{"a"}, 3))
}
