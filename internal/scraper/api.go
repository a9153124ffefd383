package scraper

import (
	"context"
)

const (
	SiteLinkedIn = "linkedin"
	SiteIndeed   = "indeed"
	SiteGoogle   = "google"
)

// RawJob is one loosely-typed record as returned by the upstream scraper.
// Field names and value types vary between sites and library versions.
type RawJob map[string]any

// SearchRequest is a single upstream scrape call.
type SearchRequest struct {
	Sites                    []string
	SearchTerm               string
	GoogleSearchTerm         string
	Location                 string
	ResultsWanted            int
	HoursOld                 int
	CountryIndeed            string
	LinkedInFetchDescription bool
	IsRemote                 bool
}

// Fetcher is the upstream fetch capability. Implementations must honour ctx.
type Fetcher interface {
	FetchJobs(ctx context.Context, req SearchRequest) ([]RawJob, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, req SearchRequest) ([]RawJob, error)

func (f FetcherFunc) FetchJobs(ctx context.Context, req SearchRequest) ([]RawJob, error) {
	return f(ctx, req)
}
