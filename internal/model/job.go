package model

import "strings"

// Job is the canonical posting returned to callers. Every Job is produced by
// the scraper normalizer; raw upstream records never reach the API.
type Job struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	JobURL      string   `json:"job_url,omitempty"`
	Source      string   `json:"source"`
	IsRemote    *bool    `json:"is_remote,omitempty"`
	Remote      *bool    `json:"remote,omitempty"`
	CompanyLogo string   `json:"company_logo,omitempty"`
	DatePosted  string   `json:"date_posted,omitempty"` // YYYY-MM-DD
	MinAmount   *float64 `json:"min_amount,omitempty"`
	MaxAmount   *float64 `json:"max_amount,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	PayPeriod   string   `json:"pay_period,omitempty"`
	JobType     string   `json:"job_type,omitempty"`
}

// DedupKey returns the value used to detect the same posting across sources:
// job_url, then url, then id. Empty means the job cannot be identified.
func (j Job) DedupKey() string {
	if j.JobURL != "" {
		return j.JobURL
	}
	if j.URL != "" {
		return j.URL
	}
	return j.ID
}

type JobsResponse struct {
	Message   string `json:"message"`
	TotalJobs int    `json:"total_jobs"`
	Jobs      []Job  `json:"jobs"`
}

// FetchJobsParams is the body of POST /api/jobs.
type FetchJobsParams struct {
	Keywords []string `json:"keywords,omitempty"`
	Location string   `json:"location,omitempty"`
	Query    string   `json:"query,omitempty"`
}

// Normalized trims every field and drops blank keywords, keeping keyword order.
func (p FetchJobsParams) Normalized() FetchJobsParams {
	out := FetchJobsParams{
		Location: strings.TrimSpace(p.Location),
		Query:    strings.TrimSpace(p.Query),
	}
	for _, k := range p.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			out.Keywords = append(out.Keywords, k)
		}
	}
	return out
}

// Validate requires a non-empty keyword list or a non-blank query.
func (p FetchJobsParams) Validate() error {
	n := p.Normalized()
	if len(n.Keywords) == 0 && n.Query == "" {
		return &ValidationError{Message: "Keywords array or query string is required to fetch jobs."}
	}
	return nil
}
