package model

import "errors"

// Run-level failure taxonomy. Local misses (a claim that matches nothing, a
// source with no usable claims) are absorbed as "no evidence" and never
// surface as errors.
var (
	// ErrNoUpstreamData means no sources/claims exist for the requested
	// statement. Fatal to the current run; never retried silently.
	ErrNoUpstreamData = errors.New("no upstream source data for statement")

	// ErrNoStructuredData means every extraction batch failed, so the run
	// has nothing to analyze.
	ErrNoStructuredData = errors.New("no structured data extracted from any batch")
)
