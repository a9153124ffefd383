package cache

import (
	"encoding/json"
	"sort"

	"github.com/baxromumarov/job-feed/internal/model"
)

// BuildKey derives the canonical cache key for a request. Keyword order does
// not matter and blank fields are left out, so equivalent requests share a key.
func BuildKey(params model.FetchJobsParams) string {
	p := params.Normalized()

	canonical := make(map[string]any, 3)
	if len(p.Keywords) > 0 {
		keywords := append([]string(nil), p.Keywords...)
		sort.Strings(keywords)
		canonical["keywords"] = keywords
	}
	if p.Location != "" {
		canonical["location"] = p.Location
	}
	if p.Query != "" {
		canonical["query"] = p.Query
	}

	// encoding/json writes map keys in sorted order
	b, _ := json.Marshal(canonical)
	return string(b)
}
