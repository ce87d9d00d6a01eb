// Package metrics provides run observers that reduce a trajectory to
// scalar diagnostics.
package metrics

import "github.com/san-kum/netdyn/internal/sim"

// Metric is a named scalar accumulated over a run. Every Metric is
// also a sim.Observer and can be attached to a Simulator directly.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}
