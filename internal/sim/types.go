// Package sim composes per-vertex and per-edge evolution functions
// into a full network right-hand side and drives fixed-step
// simulation runs over it.
package sim

import "github.com/san-kum/netdyn/internal/dyn"

// System is an ODE system dx/dt = f(x, t), evaluated in place into dst.
type System interface {
	Derive(dst, x dyn.State, t float64)
	Dim() int
}

// Stepper advances a system state by one timestep.
type Stepper interface {
	Step(sys System, x dyn.State, t, dt float64) (dyn.State, error)
}

// Observer is notified after every accepted step.
type Observer interface {
	OnStep(x dyn.State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{Dt: 0.01, Duration: 10.0, ValidateState: true}
}

// Result collects the trajectory of one run.
type Result struct {
	States     []dyn.State
	Times      []float64
	StepsTaken int
}

// Component returns the trajectory of state component k, one value
// per recorded step.
func (r *Result) Component(k int) []float64 {
	ys := make([]float64, len(r.States))
	for i, s := range r.States {
		ys[i] = s[k]
	}
	return ys
}
