package scraper

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/baxromumarov/job-feed/internal/model"
)

const (
	SourceUnknown = "unknown"
	urlIDLength   = 12
	isoDateLayout = "2006-01-02"
)

var sourceAliases = map[string]string{
	"linkedin":    SiteLinkedIn,
	"indeed":      SiteIndeed,
	"google":      SiteGoogle,
	"google_jobs": SiteGoogle,
	"googlejobs":  SiteGoogle,
}

var (
	nonSourceChars = regexp.MustCompile(`[^a-z_]`)
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// namespace for ids derived from title, company and location
	structuralIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/baxromumarov/job-feed/jobs"))
)

// Normalizer maps raw upstream records onto model.Job. Normalize never fails:
// missing or malformed fields are left empty.
type Normalizer struct {
	stripHTML bool
}

// NewNormalizer returns a Normalizer. With stripHTML set, descriptions that
// contain markup are flattened to plain text.
func NewNormalizer(stripHTML bool) *Normalizer {
	return &Normalizer{stripHTML: stripHTML}
}

func (n *Normalizer) NormalizeAll(raws []RawJob) []model.Job {
	jobs := make([]model.Job, 0, len(raws))
	for _, raw := range raws {
		jobs = append(jobs, n.Normalize(raw))
	}
	return jobs
}

func (n *Normalizer) Normalize(raw RawJob) model.Job {
	source := NormalizeSource(firstPresent(raw, "source", "site", "job_source", "job_provider"))

	// camelCase keys come first, snake_case variants are fallbacks
	jobURL := firstNonEmptyString(raw, "jobUrl", "job_url", "url", "job_url_direct")

	title := asString(firstPresent(raw, "title", "job_title"))
	company := asString(firstPresent(raw, "companyName", "company_name", "company"))
	location := normalizeLocation(raw)

	id := firstNonEmptyString(raw, "id", "job_id")
	switch {
	case id != "":
	case jobURL != "":
		id = source + "-" + urlID(jobURL)
	default:
		id = source + "-" + structuralID(title, company, location)
	}

	description := asString(firstPresent(raw, "description", "job_description"))
	if n.stripHTML && looksLikeHTML(description) {
		if text, err := htmlToText(description); err == nil {
			description = text
		}
	}

	remote := asBool(firstPresent(raw, "isRemote", "is_remote", "remote"))

	return model.Job{
		ID:          id,
		Title:       title,
		Company:     company,
		CompanyName: company,
		Location:    location,
		Description: description,
		URL:         jobURL,
		JobURL:      jobURL,
		Source:      source,
		IsRemote:    remote,
		Remote:      remote,
		CompanyLogo: asString(firstPresent(raw, "companyLogo", "company_logo", "company_logo_url")),
		DatePosted:  NormalizeDate(firstPresent(raw, "datePosted", "date_posted", "posted_date")),
		MinAmount:   asNumber(firstPresent(raw, "minAmount", "min_amount")),
		MaxAmount:   asNumber(firstPresent(raw, "maxAmount", "max_amount")),
		Currency:    asString(raw["currency"]),
		PayPeriod:   firstString(raw, "pay_period", "interval"),
		JobType:     firstString(raw, "jobType", "job_type", "employment_type"),
	}
}

// NormalizeSource lowercases v, strips everything outside [a-z_] and maps
// the known aliases. Unknown tokens pass through cleaned.
func NormalizeSource(v any) string {
	s, ok := v.(string)
	if !ok {
		return SourceUnknown
	}
	key := nonSourceChars.ReplaceAllString(strings.ToLower(s), "")
	if mapped, ok := sourceAliases[key]; ok {
		return mapped
	}
	if key == "" {
		return SourceUnknown
	}
	return key
}

// NormalizeDate reduces v to YYYY-MM-DD, or "" when it is not a date.
func NormalizeDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(isoDateLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return NormalizeDate(*t)
	case string:
		if isoDatePattern.MatchString(t) {
			return t
		}
		parsed, err := dateparse.ParseIn(strings.TrimSpace(t), time.UTC)
		if err != nil {
			return ""
		}
		return parsed.UTC().Format(isoDateLayout)
	}
	return ""
}

func normalizeLocation(raw RawJob) string {
	switch loc := raw["location"].(type) {
	case map[string]any:
		return asString(firstPresent(loc, "city", "state", "country"))
	case RawJob:
		return asString(firstPresent(loc, "city", "state", "country"))
	case []any:
		return ""
	}
	return asString(firstPresent(raw, "location", "job_location"))
}

func urlID(jobURL string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(jobURL))[:urlIDLength]
}

func structuralID(title, company, location string) string {
	name := strings.ToLower(strings.Join([]string{title, company, location}, "\x1f"))
	return uuid.NewSHA1(structuralIDSpace, []byte(name)).String()
}

// firstPresent returns the first non-nil value among keys.
func firstPresent(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// firstString returns the first value among keys that is a string.
func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok {
			return s
		}
	}
	return ""
}

func firstNonEmptyString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

// asNumber accepts finite numeric values only; numeric strings are rejected.
func asNumber(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
