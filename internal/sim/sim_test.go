package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/state"
)

// diffusionNetwork builds scalar diffusion on the given topology:
// every edge carries xs - xd, every vertex relaxes toward its
// neighbors by summing inflows and subtracting outflows.
func diffusionNetwork(t *testing.T, top network.Topology, workers int) (*Network, *network.Structure) {
	t.Helper()
	vDims := make([]int, top.NumVertices)
	eDims := make([]int, len(top.Edges))
	for i := range vDims {
		vDims[i] = 1
	}
	for j := range eDims {
		eDims[j] = 1
	}
	st, err := network.NewStructure(top, vDims, eDims)
	if err != nil {
		t.Fatalf("NewStructure: %v", err)
	}
	data, err := state.NewData(st, make([]float64, st.VertexDim()), make([]float64, st.EdgeDim()))
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}

	edge := func(e, xs, xd state.View, p []float64, tm float64) {
		e.Set(0, xs.At(0)-xd.At(0))
	}
	vertex := func(dx, x state.View, in, out []state.View, p []float64, tm float64) {
		acc := 0.0
		for _, e := range in {
			acc += e.At(0)
		}
		for _, e := range out {
			acc -= e.At(0)
		}
		dx.Set(0, acc)
	}

	nw, err := NewNetwork(st, data, []VertexFunc{vertex}, []EdgeFunc{edge}, dyn.Params{}, workers)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	return nw, st
}

func TestNetwork_Derive_TwoVertexDiffusion(t *testing.T) {
	top := network.Topology{NumVertices: 2, Edges: []network.Edge{{From: 0, To: 1}}}
	nw, _ := diffusionNetwork(t, top, 1)

	x := dyn.State{3, 1} // edge value 3 - 1 = 2
	dst := make(dyn.State, 2)
	nw.Derive(dst, x, 0)

	if dst[0] != -2 || dst[1] != 2 {
		t.Errorf("Derive = %v, want [-2 2]", dst)
	}
}

func TestNetwork_Derive_ConservesTotal(t *testing.T) {
	nw, st := diffusionNetwork(t, network.Ring(6), 1)

	x := dyn.State{5, 0, 1, -2, 3, 0}
	dst := make(dyn.State, st.VertexDim())
	nw.Derive(dst, x, 0)

	sum := 0.0
	for _, v := range dst {
		sum += v
	}
	if math.Abs(sum) > 1e-12 {
		t.Errorf("diffusion does not conserve total: sum of derivatives = %g", sum)
	}
}

func TestNetwork_Derive_ParallelMatchesSequential(t *testing.T) {
	top := network.Ring(40)
	seq, st := diffusionNetwork(t, top, 1)
	par, _ := diffusionNetwork(t, top, 4)

	x := make(dyn.State, st.VertexDim())
	for i := range x {
		x[i] = math.Sin(float64(i))
	}
	a := make(dyn.State, len(x))
	b := make(dyn.State, len(x))
	seq.Derive(a, x, 0)
	par.Derive(b, x, 0)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("parallel Derive diverges at %d: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestNewNetwork_Validation(t *testing.T) {
	top := network.Topology{NumVertices: 2, Edges: []network.Edge{{From: 0, To: 1}}}
	st, err := network.NewStructure(top, []int{1, 1}, []int{1})
	if err != nil {
		t.Fatalf("NewStructure: %v", err)
	}
	data, err := state.NewData(st, make([]float64, 2), make([]float64, 1))
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	noopV := func(dx, x state.View, in, out []state.View, p []float64, tm float64) {}
	noopE := func(e, xs, xd state.View, p []float64, tm float64) {}

	if _, err := NewNetwork(st, data, []VertexFunc{noopV, noopV, noopV}, []EdgeFunc{noopE}, dyn.Params{}, 1); !errors.Is(err, dyn.ErrDimensionMismatch) {
		t.Errorf("vertex func count: error = %v, want ErrDimensionMismatch", err)
	}
	bad := dyn.Params{Edge: [][]float64{{1}, {2}}}
	if _, err := NewNetwork(st, data, []VertexFunc{noopV}, []EdgeFunc{noopE}, bad, 1); !errors.Is(err, dyn.ErrDimensionMismatch) {
		t.Errorf("edge param count: error = %v, want ErrDimensionMismatch", err)
	}
}

// eulerStepper is a minimal explicit stepper for simulator tests.
type eulerStepper struct{}

func (eulerStepper) Step(sys System, x dyn.State, t, dt float64) (dyn.State, error) {
	dx := make(dyn.State, len(x))
	sys.Derive(dx, x, t)
	next := x.Clone()
	for i := range next {
		next[i] += dt * dx[i]
	}
	return next, nil
}

func TestSimulator_Run(t *testing.T) {
	top := network.Topology{NumVertices: 2, Edges: []network.Edge{{From: 0, To: 1}}}
	nw, _ := diffusionNetwork(t, top, 1)

	s := New(nw, eulerStepper{})
	res, err := s.Run(context.Background(), dyn.State{1, 0}, Config{Dt: 0.01, Duration: 5, ValidateState: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StepsTaken != 500 {
		t.Errorf("StepsTaken = %d, want 500", res.StepsTaken)
	}

	// Two-vertex diffusion equilibrates at the mean.
	final := res.States[len(res.States)-1]
	if math.Abs(final[0]-0.5) > 1e-3 || math.Abs(final[1]-0.5) > 1e-3 {
		t.Errorf("final state = %v, want close to [0.5 0.5]", final)
	}

	comp := res.Component(0)
	if len(comp) != len(res.States) || comp[0] != 1 {
		t.Errorf("Component(0) = len %d first %g, want len %d first 1", len(comp), comp[0], len(res.States))
	}
}

func TestSimulator_ConfigValidation(t *testing.T) {
	top := network.Topology{NumVertices: 2, Edges: []network.Edge{{From: 0, To: 1}}}
	nw, _ := diffusionNetwork(t, top, 1)
	s := New(nw, eulerStepper{})

	if _, err := s.Run(context.Background(), dyn.State{1, 0}, Config{Dt: 0, Duration: 1}); err == nil {
		t.Error("zero dt accepted")
	}
	if _, err := s.Run(context.Background(), dyn.State{1, 0}, Config{Dt: 0.1, Duration: -1}); err == nil {
		t.Error("negative duration accepted")
	}
	if _, err := s.Run(context.Background(), dyn.State{1}, Config{Dt: 0.1, Duration: 1}); !errors.Is(err, dyn.ErrDimensionMismatch) {
		t.Error("wrong initial state length accepted")
	}
}

func TestSimulator_ContextCancel(t *testing.T) {
	top := network.Topology{NumVertices: 2, Edges: []network.Edge{{From: 0, To: 1}}}
	nw, _ := diffusionNetwork(t, top, 1)
	s := New(nw, eulerStepper{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx, dyn.State{1, 0}, Config{Dt: 0.01, Duration: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res == nil || len(res.States) == 0 {
		t.Error("canceled run returned no partial result")
	}
}
