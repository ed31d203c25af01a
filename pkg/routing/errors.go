package routing

import "errors"

var (
	ErrUnknownAlgorithm  = errors.New("routing: unknown algorithm")
	ErrIncompleteNetwork = errors.New("routing: network needs a topology and labels")
	ErrIndexRequired     = errors.New("routing: algorithm needs a connectivity index")
	ErrInvalidPath       = errors.New("routing: invalid path")
)
