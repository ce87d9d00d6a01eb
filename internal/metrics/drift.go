package metrics

import (
	"math"

	"github.com/san-kum/netdyn/internal/dyn"
)

// Drift tracks how far the sum of all state components wanders from
// its value at the first observed step, as a relative error. Diffusive
// couplings conserve this sum, so a large drift flags integrator
// trouble.
type Drift struct {
	name    string
	initial float64
	max     float64
	samples int
}

func NewDrift() *Drift {
	return &Drift{name: "drift"}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) OnStep(x dyn.State, t float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	if d.samples == 0 {
		d.initial = sum
	}
	d.samples++

	scale := math.Abs(d.initial)
	if scale < 1 {
		scale = 1
	}
	if drift := math.Abs(sum-d.initial) / scale; drift > d.max {
		d.max = drift
	}
}

func (d *Drift) Value() float64 {
	return d.max
}

func (d *Drift) Reset() {
	d.initial = 0
	d.max = 0
	d.samples = 0
}
