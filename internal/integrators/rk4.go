// Package integrators provides the steppers used to advance network
// systems: an explicit RK4 for non-stiff runs and an implicit Euler
// whose Newton iteration consumes matrix-free Jacobian-vector
// products.
package integrators

import (
	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/sim"
)

// RK4 is the classic fourth-order Runge-Kutta stepper. Stage buffers
// are reused across steps.
type RK4 struct {
	k1, k2, k3, k4 dyn.State
	scratch        dyn.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dyn.State, n)
		r.k2 = make(dyn.State, n)
		r.k3 = make(dyn.State, n)
		r.k4 = make(dyn.State, n)
		r.scratch = make(dyn.State, n)
	}
}

func (r *RK4) Step(sys sim.System, x dyn.State, t, dt float64) (dyn.State, error) {
	n := len(x)
	r.ensureScratch(n)

	sys.Derive(r.k1, x, t)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	sys.Derive(r.k2, r.scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	sys.Derive(r.k3, r.scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	sys.Derive(r.k4, r.scratch, t+dt)

	result := make(dyn.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result, nil
}
