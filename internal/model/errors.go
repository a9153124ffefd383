package model

import (
	"errors"
	"fmt"
)

// ErrAggregationFailed is returned when every upstream call failed or the
// calls together produced no records.
var ErrAggregationFailed = errors.New("failed to fetch jobs from any source")

// ValidationError reports a bad request body. It is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError wraps the failure of a single upstream call (one keyword
// batch or the Google query). The aggregator logs it and moves on.
type UpstreamError struct {
	Call string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call %s: %v", e.Call, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
