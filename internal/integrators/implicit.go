package integrators

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/operator"
	"github.com/san-kum/netdyn/internal/sim"
	"github.com/san-kum/netdyn/internal/solve"
	"gonum.org/v1/gonum/floats"
)

// ImplicitEuler advances M * dx/dt = f(x, t) by the backward Euler
// rule, solving M*(y - x) - dt*f(y) = 0 for y with Newton iteration.
// The Newton matrix M - dt*J is never assembled: each inner BiCGStab
// iteration applies it through the Jacobian-vector operator, whose
// coefficients are refreshed at every Newton iterate.
type ImplicitEuler struct {
	// Tol is the Newton residual tolerance, relative to 1 + ||y||.
	Tol float64
	// MaxNewton bounds the outer Newton iterations per step.
	MaxNewton int
	// KrylovTol and MaxKrylov control the inner linear solves.
	KrylovTol float64
	MaxKrylov int

	op     *operator.Operator
	mass   operator.MulVecToer
	params dyn.Params

	fy, g, delta, diff dyn.State
}

// NewImplicitEuler builds a backward Euler stepper around a refreshed
// Jacobian operator. mass may be operator.Identity for purely
// differential systems; params is handed to every coefficient refresh.
func NewImplicitEuler(op *operator.Operator, mass operator.MulVecToer, params dyn.Params) *ImplicitEuler {
	return &ImplicitEuler{
		Tol:       1e-8,
		MaxNewton: 25,
		KrylovTol: 1e-10,
		MaxKrylov: 500,
		op:        op,
		mass:      mass,
		params:    params,
	}
}

func (ie *ImplicitEuler) ensureScratch(n int) {
	if len(ie.fy) != n {
		ie.fy = make(dyn.State, n)
		ie.g = make(dyn.State, n)
		ie.delta = make(dyn.State, n)
		ie.diff = make(dyn.State, n)
	}
}

// newtonOp applies M - dt*J without assembling it.
type newtonOp struct {
	op   *operator.Operator
	mass operator.MulVecToer
	dt   float64
	tmp  []float64
}

func (n *newtonOp) MulVecTo(dst, z []float64) {
	n.mass.MulVecTo(dst, z)
	n.op.ApplyTo(n.tmp, z)
	floats.AddScaled(dst, -n.dt, n.tmp)
}

func (ie *ImplicitEuler) Step(sys sim.System, x dyn.State, t, dt float64) (dyn.State, error) {
	n := len(x)
	ie.ensureScratch(n)
	nop := &newtonOp{op: ie.op, mass: ie.mass, dt: dt, tmp: make([]float64, n)}

	y := x.Clone()
	tNext := t + dt

	for k := 0; k < ie.MaxNewton; k++ {
		sys.Derive(ie.fy, y, tNext)

		// g(y) = M*(y - x) - dt*f(y)
		floats.SubTo(ie.diff, y, x)
		ie.mass.MulVecTo(ie.g, ie.diff)
		floats.AddScaled(ie.g, -dt, ie.fy)

		if floats.Norm(ie.g, 2) <= ie.Tol*(1+floats.Norm(y, 2)) {
			return y, nil
		}

		if err := ie.op.Update(y, ie.params, tNext); err != nil {
			return nil, err
		}
		for i := range ie.delta {
			ie.delta[i] = 0
		}
		if _, err := solve.BiCGStab(nop, ie.g, ie.delta, ie.KrylovTol, ie.MaxKrylov); err != nil {
			return nil, fmt.Errorf("newton linear solve: %w", err)
		}
		floats.Sub(y, ie.delta)
	}

	return nil, fmt.Errorf("implicit euler at t=%.4f: %w", t, dyn.ErrNoConvergence)
}
