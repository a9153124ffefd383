package core

import "github.com/baxromumarov/job-feed/internal/model"

// Dedupe keeps the first job for every dedup key, preserving input order.
// Jobs without a key are dropped.
func Dedupe(jobs []model.Job) []model.Job {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		key := j.DedupKey()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, j)
	}
	return out
}
