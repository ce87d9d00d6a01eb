package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/operator"
	"github.com/san-kum/netdyn/internal/state"
	"gonum.org/v1/gonum/mat"
)

// oscillator is dx/dt = (v, -x), the unit harmonic oscillator.
type oscillator struct{}

func (oscillator) Derive(dst, x dyn.State, t float64) {
	dst[0] = x[1]
	dst[1] = -x[0]
}

func (oscillator) Dim() int { return 2 }

func TestRK4_HarmonicOscillator(t *testing.T) {
	integ := NewRK4()
	x := dyn.State{1, 0}
	dt := 0.01
	steps := 100

	var err error
	for i := 0; i < steps; i++ {
		x, err = integ.Step(oscillator{}, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	tEnd := float64(steps) * dt
	if math.Abs(x[0]-math.Cos(tEnd)) > 1e-4 {
		t.Errorf("position = %.6f, want %.6f", x[0], math.Cos(tEnd))
	}
	if math.Abs(x[1]+math.Sin(tEnd)) > 1e-4 {
		t.Errorf("velocity = %.6f, want %.6f", x[1], -math.Sin(tEnd))
	}
}

// decay is the scalar system dx/dt = -lambda*x on a single vertex
// with no edges, built with its exact Jacobian.
type decay struct {
	lambda float64
}

func (d decay) Derive(dst, x dyn.State, t float64) { dst[0] = -d.lambda * x[0] }
func (d decay) Dim() int                           { return 1 }

func decayOperator(t *testing.T, lambda float64) *operator.Operator {
	t.Helper()
	st, err := network.NewStructure(network.Topology{NumVertices: 1}, []int{1}, nil)
	if err != nil {
		t.Fatalf("NewStructure: %v", err)
	}
	x0 := []float64{1}
	data, err := state.NewData(st, x0, nil)
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	storage, err := operator.NewStorage(st)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	vjac := func(dst *mat.Dense, x state.View, p []float64, tm float64) {
		dst.Set(0, 0, -lambda)
	}
	op, err := operator.New(st, data, storage, []operator.VertexJacobian{vjac}, nil, x0, dyn.Params{}, 0, 1)
	if err != nil {
		t.Fatalf("operator.New: %v", err)
	}
	return op
}

func TestImplicitEuler_LinearDecayExact(t *testing.T) {
	lambda := 3.0
	dt := 0.1
	op := decayOperator(t, lambda)
	ie := NewImplicitEuler(op, operator.Identity(1), dyn.Params{})

	// Backward Euler on dx/dt = -lambda*x contracts by exactly
	// 1/(1 + lambda*dt) per step.
	x := dyn.State{1}
	steps := 10
	var err error
	for i := 0; i < steps; i++ {
		x, err = ie.Step(decay{lambda}, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	want := math.Pow(1/(1+lambda*dt), float64(steps))
	if math.Abs(x[0]-want) > 1e-8 {
		t.Errorf("x = %.12f, want %.12f", x[0], want)
	}
}

func TestImplicitEuler_MassMatrix(t *testing.T) {
	lambda := 2.0
	dt := 0.25

	st, err := network.NewStructure(network.Topology{NumVertices: 1}, []int{1}, nil)
	if err != nil {
		t.Fatalf("NewStructure: %v", err)
	}
	mass, err := operator.VertexMass(st, []mat.Matrix{mat.NewDense(1, 1, []float64{2})})
	if err != nil {
		t.Fatalf("VertexMass: %v", err)
	}

	op := decayOperator(t, lambda)
	ie := NewImplicitEuler(op, mass, dyn.Params{})

	// 2*(y - x) = -dt*lambda*y  =>  y = x / (1 + lambda*dt/2)
	x, err := ie.Step(decay{lambda}, dyn.State{1}, 0, dt)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := 1 / (1 + lambda*dt/2)
	if math.Abs(x[0]-want) > 1e-8 {
		t.Errorf("x = %.12f, want %.12f", x[0], want)
	}
}

func TestImplicitEuler_StiffStability(t *testing.T) {
	// Explicit methods blow up on dx/dt = -1000x at dt = 0.1;
	// backward Euler must decay monotonically.
	lambda := 1000.0
	dt := 0.1
	op := decayOperator(t, lambda)
	ie := NewImplicitEuler(op, operator.Identity(1), dyn.Params{})

	x := dyn.State{1}
	var err error
	for i := 0; i < 5; i++ {
		prev := x[0]
		x, err = ie.Step(decay{lambda}, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if math.Abs(x[0]) >= math.Abs(prev) {
			t.Fatalf("step %d did not contract: %g -> %g", i, prev, x[0])
		}
	}
}
