package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baxromumarov/job-feed/internal/model"
)

func TestDedupe(t *testing.T) {
	jobs := []model.Job{
		{ID: "1", Source: "google", JobURL: "https://x/1", URL: "https://x/1"},
		{ID: "2", Source: "linkedin", JobURL: "https://x/1", URL: "https://x/1"},
		{ID: "3", Source: "indeed", URL: "https://x/3"},
		{ID: "4", Source: "indeed"},
		{ID: "4", Source: "linkedin"},
		{Source: "unknown"},
		{ID: "5", Source: "indeed", JobURL: "https://x/5"},
	}

	got := Dedupe(jobs)

	ids := make([]string, 0, len(got))
	for _, j := range got {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []string{"1", "3", "4", "5"}, ids)
	assert.Equal(t, "google", got[0].Source)
	assert.Equal(t, "indeed", got[2].Source)
}

func TestDedupe_Empty(t *testing.T) {
	got := Dedupe(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDedupe_NoDuplicateKeys(t *testing.T) {
	var jobs []model.Job
	for i := 0; i < 50; i++ {
		jobs = append(jobs, model.Job{ID: "id", JobURL: []string{"a", "b", "c"}[i%3]})
	}

	seen := map[string]bool{}
	for _, j := range Dedupe(jobs) {
		assert.False(t, seen[j.DedupKey()])
		seen[j.DedupKey()] = true
	}
	assert.Len(t, seen, 3)
}
