package faults

import "errors"

var (
	// ErrInvalidBranches indicates a negative branch count r.
	ErrInvalidBranches = errors.New("faults: branch count must be non-negative")
	// ErrInvalidCoreSize indicates a negative core parameter h.
	ErrInvalidCoreSize = errors.New("faults: core size parameter must be non-negative")
	// ErrInvalidRetryBudget indicates a retry budget below one.
	ErrInvalidRetryBudget = errors.New("faults: retry budget must be at least 1")
	// ErrNilRand indicates a missing random source.
	ErrNilRand = errors.New("faults: random source is required")
	// ErrBranchShortfall reports that fewer than r-1 branches were realized.
	// It is surfaced as a warning, never as a returned error.
	ErrBranchShortfall = errors.New("faults: branch shortfall")
)
