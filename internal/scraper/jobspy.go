package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/baxromumarov/job-feed/internal/httpx"
)

const jobSpySearchPath = "/api/v1/search_jobs"

// JobSpyClient calls a JobSpy API sidecar, which wraps the JobSpy scraping
// library (LinkedIn, Indeed, Google Jobs) behind HTTP.
type JobSpyClient struct {
	client            *httpx.Client
	baseURL           string
	apiKey            string
	descriptionFormat string
}

type jobSpyRequest struct {
	SiteName                 []string `json:"site_name"`
	SearchTerm               string   `json:"search_term,omitempty"`
	GoogleSearchTerm         string   `json:"google_search_term,omitempty"`
	Location                 string   `json:"location,omitempty"`
	ResultsWanted            int      `json:"results_wanted,omitempty"`
	HoursOld                 int      `json:"hours_old,omitempty"`
	CountryIndeed            string   `json:"country_indeed,omitempty"`
	LinkedInFetchDescription bool     `json:"linkedin_fetch_description"`
	IsRemote                 bool     `json:"is_remote"`
	DescriptionFormat        string   `json:"description_format,omitempty"`
}

type jobSpyResponse struct {
	Count int      `json:"count"`
	Jobs  []RawJob `json:"jobs"`
}

func NewJobSpyClient(client *httpx.Client, baseURL, apiKey, descriptionFormat string) *JobSpyClient {
	return &JobSpyClient{
		client:            client,
		baseURL:           strings.TrimSuffix(baseURL, "/"),
		apiKey:            apiKey,
		descriptionFormat: descriptionFormat,
	}
}

func (c *JobSpyClient) FetchJobs(ctx context.Context, sr SearchRequest) ([]RawJob, error) {
	body := jobSpyRequest{
		SiteName:                 sr.Sites,
		SearchTerm:               sr.SearchTerm,
		GoogleSearchTerm:         sr.GoogleSearchTerm,
		Location:                 sr.Location,
		ResultsWanted:            sr.ResultsWanted,
		HoursOld:                 sr.HoursOld,
		CountryIndeed:            sr.CountryIndeed,
		LinkedInFetchDescription: sr.LinkedInFetchDescription,
		IsRemote:                 sr.IsRemote,
		DescriptionFormat:        c.descriptionFormat,
	}

	req, err := httpx.NewJSONRequest(ctx, http.MethodPost, c.baseURL+jobSpySearchPath, body)
	if err != nil {
		return nil, fmt.Errorf("jobspy build request failed: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	var payload json.RawMessage
	if err := c.client.DoJSON(ctx, req, &payload); err != nil {
		return nil, fmt.Errorf("jobspy fetch failed: %w", err)
	}
	return decodeJobSpyPayload(payload)
}

// decodeJobSpyPayload accepts both the wrapped {"count", "jobs"} shape and a
// bare array of records.
func decodeJobSpyPayload(payload json.RawMessage) ([]RawJob, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var jobs []RawJob
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return nil, fmt.Errorf("jobspy decode failed: %w", err)
		}
		return compact(jobs), nil
	}

	var resp jobSpyResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("jobspy decode failed: %w", err)
	}
	return compact(resp.Jobs), nil
}

// compact drops null array entries.
func compact(jobs []RawJob) []RawJob {
	out := jobs[:0]
	for _, j := range jobs {
		if j != nil {
			out = append(out, j)
		}
	}
	return out
}
