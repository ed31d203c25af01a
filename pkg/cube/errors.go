package cube

import (
	"errors"
	"fmt"
)

var (
	// ErrTooFewComponents means endpoints cannot come from different
	// components because the fault-free part of the network is connected.
	ErrTooFewComponents = errors.New("cube: fewer than two components")
	// ErrComponentTooSmall means the largest component has fewer than two
	// nodes, so no pair of distinct endpoints exists.
	ErrComponentTooSmall = errors.New("cube: largest component has fewer than two nodes")
)

// BuildError describes a failed instance build.
type BuildError struct {
	Op     string // stage that failed: "topology", "faults"
	Params Params
	Cause  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cube: %s %s: %v", e.Op, e.Params, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *BuildError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}
