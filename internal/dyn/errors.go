package dyn

import "errors"

// Domain errors shared across the indexing and operator layers.
var (
	// ErrDimensionMismatch indicates buffers, dimension sequences, or
	// parameter sets whose shapes do not match the network structure.
	ErrDimensionMismatch = errors.New("netdyn: dimension mismatch")

	// ErrBadTopology indicates an edge endpoint outside the vertex range.
	ErrBadTopology = errors.New("netdyn: edge endpoint out of range")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("netdyn: invalid state (NaN or Inf detected)")

	// ErrNoConvergence indicates an iterative solve that exhausted its
	// iteration budget without reaching tolerance.
	ErrNoConvergence = errors.New("netdyn: iteration did not converge")
)
