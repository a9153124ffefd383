package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	UpstreamCalls       uint64            `json:"upstream_calls"`
	UpstreamFailures    uint64            `json:"upstream_failures"`
	UpstreamSecondsAvg  float64           `json:"upstream_seconds_avg"`
	Aggregations        uint64            `json:"aggregations"`
	AggregationFailures uint64            `json:"aggregation_failures"`
	JobsServed          uint64            `json:"jobs_served"`
	CacheHits           uint64            `json:"cache_hits"`
	CacheMisses         uint64            `json:"cache_misses"`
	ErrorsTotal         uint64            `json:"errors_total"`
	RecordsBySource     map[string]uint64 `json:"records_by_source,omitempty"`
	ErrorsByType        map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent   map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	upstreamCalls       uint64
	upstreamFailures    uint64
	aggregations        uint64
	aggregationFailures uint64
	jobsServed          uint64
	cacheHits           uint64
	cacheMisses         uint64
	errorsTotal         uint64

	upstreamCount uint64
	upstreamNanos uint64

	statsMu           sync.Mutex
	recordsBySource   = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncUpstreamCall() {
	atomic.AddUint64(&upstreamCalls, 1)
}

func IncUpstreamFailure() {
	atomic.AddUint64(&upstreamFailures, 1)
}

func ObserveUpstreamDuration(seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&upstreamCount, 1)
	atomic.AddUint64(&upstreamNanos, uint64(seconds*1e9))
}

func IncAggregation(failed bool) {
	atomic.AddUint64(&aggregations, 1)
	if failed {
		atomic.AddUint64(&aggregationFailures, 1)
	}
}

func AddJobsServed(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&jobsServed, uint64(n))
}

func IncCacheHit() {
	atomic.AddUint64(&cacheHits, 1)
}

func IncCacheMiss() {
	atomic.AddUint64(&cacheMisses, 1)
}

// AddRecords counts normalized records per source.
func AddRecords(source string, n int) {
	if n <= 0 {
		return
	}
	if source == "" {
		source = "unknown"
	}
	statsMu.Lock()
	recordsBySource[source] += uint64(n)
	statsMu.Unlock()
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	sourceCopy := copyMap(recordsBySource)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&upstreamCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&upstreamNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		UpstreamCalls:       atomic.LoadUint64(&upstreamCalls),
		UpstreamFailures:    atomic.LoadUint64(&upstreamFailures),
		UpstreamSecondsAvg:  avg,
		Aggregations:        atomic.LoadUint64(&aggregations),
		AggregationFailures: atomic.LoadUint64(&aggregationFailures),
		JobsServed:          atomic.LoadUint64(&jobsServed),
		CacheHits:           atomic.LoadUint64(&cacheHits),
		CacheMisses:         atomic.LoadUint64(&cacheMisses),
		ErrorsTotal:         atomic.LoadUint64(&errorsTotal),
		RecordsBySource:     sourceCopy,
		ErrorsByType:        errorsTypeCopy,
		ErrorsByComponent:   errorsComponentCopy,
	}
}

// Reset zeroes every counter.
func Reset() {
	for _, p := range []*uint64{
		&upstreamCalls, &upstreamFailures, &aggregations, &aggregationFailures,
		&jobsServed, &cacheHits, &cacheMisses, &errorsTotal, &upstreamCount, &upstreamNanos,
	} {
		atomic.StoreUint64(p, 0)
	}
	statsMu.Lock()
	recordsBySource = map[string]uint64{}
	errorsByType = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
	statsMu.Unlock()
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
