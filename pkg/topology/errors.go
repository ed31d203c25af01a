package topology

import "errors"

var (
	// ErrInvalidDimension indicates n < 1.
	ErrInvalidDimension = errors.New("topology: dimension must be at least 1")
	// ErrInvalidRadix indicates k < 2.
	ErrInvalidRadix = errors.New("topology: radix must be at least 2")
	// ErrTooLarge indicates k^n exceeds MaxNodes.
	ErrTooLarge = errors.New("topology: node count too large")
	// ErrUnknownNode indicates a node outside the declared coordinate space.
	ErrUnknownNode = errors.New("topology: unknown node")
)
