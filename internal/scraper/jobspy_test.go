package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/job-feed/internal/httpx"
)

func newTestJobSpy(t *testing.T, h http.HandlerFunc, apiKey string) *JobSpyClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewJobSpyClient(httpx.NewClient("test", 0, 1), srv.URL+"/", apiKey, "markdown")
}

func TestJobSpyClient_WrappedPayload(t *testing.T) {
	var got jobSpyRequest
	var gotKey, gotPath string

	c := newTestJobSpy(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":2,"jobs":[{"id":"a","site":"linkedin"},null,{"id":"b","site":"indeed"}]}`))
	}, "secret")

	jobs, err := c.FetchJobs(context.Background(), SearchRequest{
		Sites:                    []string{SiteLinkedIn, SiteIndeed},
		SearchTerm:               "react",
		Location:                 "Lebanon",
		ResultsWanted:            10,
		HoursOld:                 24,
		CountryIndeed:            "Lebanon",
		LinkedInFetchDescription: true,
	})
	require.NoError(t, err)

	assert.Equal(t, jobSpySearchPath, gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, []string{"linkedin", "indeed"}, got.SiteName)
	assert.Equal(t, "react", got.SearchTerm)
	assert.Equal(t, "Lebanon", got.Location)
	assert.Equal(t, 10, got.ResultsWanted)
	assert.Equal(t, 24, got.HoursOld)
	assert.True(t, got.LinkedInFetchDescription)
	assert.Equal(t, "markdown", got.DescriptionFormat)

	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0]["id"])
	assert.Equal(t, "b", jobs[1]["id"])
}

func TestJobSpyClient_BareArrayWithoutKey(t *testing.T) {
	var sawKey bool
	c := newTestJobSpy(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawKey = r.Header["X-Api-Key"]
		_, _ = w.Write([]byte(`[{"id":"g1","site":"google"}]`))
	}, "")

	jobs, err := c.FetchJobs(context.Background(), SearchRequest{Sites: []string{SiteGoogle}, GoogleSearchTerm: "react jobs"})
	require.NoError(t, err)
	assert.False(t, sawKey)
	require.Len(t, jobs, 1)
	assert.Equal(t, "google", jobs[0]["site"])
}

func TestJobSpyClient_NullPayload(t *testing.T) {
	c := newTestJobSpy(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}, "")

	jobs, err := c.FetchJobs(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobSpyClient_StatusError(t *testing.T) {
	c := newTestJobSpy(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scraper blocked", http.StatusBadGateway)
	}, "")

	_, err := c.FetchJobs(context.Background(), SearchRequest{})
	require.Error(t, err)

	var fe *httpx.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusBadGateway, fe.Status)
	assert.Contains(t, err.Error(), "jobspy fetch failed")
}

func TestJobSpyClient_ContextCancelled(t *testing.T) {
	c := newTestJobSpy(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchJobs(ctx, SearchRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecodeJobSpyPayload_Malformed(t *testing.T) {
	_, err := decodeJobSpyPayload(json.RawMessage(`{"jobs": "nope"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobspy decode failed")
}
