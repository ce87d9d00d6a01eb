package models

import (
	"fmt"
	"math"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/operator"
	"github.com/san-kum/netdyn/internal/sim"
	"github.com/san-kum/netdyn/internal/state"
	"gonum.org/v1/gonum/mat"
)

// Kuramoto is the phase-oscillator model on an undirected graph:
// dθ_i/dt = ω_i + Σ K·sin(θ_src − θ_dst) over incoming edges, with
// each link represented as a directed edge pair. omega supplies the
// natural frequency of every vertex; theta0 the initial phases (nil
// starts all at zero).
func Kuramoto(top network.Topology, coupling float64, omega, theta0 []float64) (*Model, error) {
	if len(omega) != top.NumVertices {
		return nil, fmt.Errorf("%w: %d natural frequencies for %d vertices", dyn.ErrDimensionMismatch, len(omega), top.NumVertices)
	}
	sym := network.Symmetrize(top)
	st, err := network.NewStructure(sym, ones(sym.NumVertices), ones(len(sym.Edges)))
	if err != nil {
		return nil, err
	}

	x0 := make(dyn.State, st.VertexDim())
	if theta0 != nil {
		if len(theta0) != st.VertexDim() {
			return nil, fmt.Errorf("%w: %d initial phases for %d vertices", dyn.ErrDimensionMismatch, len(theta0), top.NumVertices)
		}
		copy(x0, theta0)
	}

	params := dyn.Params{Vertex: make([][]float64, st.NumV)}
	for i := range params.Vertex {
		params.Vertex[i] = []float64{omega[i]}
	}

	vertex := func(dx, x state.View, in, out []state.View, p []float64, t float64) {
		acc := p[0]
		for _, e := range in {
			acc += e.At(0)
		}
		dx.Set(0, acc)
	}
	edge := func(e, xs, xd state.View, p []float64, t float64) {
		e.Set(0, coupling*math.Sin(xs.At(0)-xd.At(0)))
	}

	vjac := func(dst *mat.Dense, x state.View, p []float64, t float64) {
		dst.Set(0, 0, 0)
	}
	ejac := func(src, dst *mat.Dense, xs, xd state.View, p []float64, t float64) {
		c := coupling * math.Cos(xs.At(0)-xd.At(0))
		src.Set(0, 0, c)
		dst.Set(0, 0, -c)
	}

	return &Model{
		Structure:  st,
		InitState:  x0,
		Params:     params,
		VertexFns:  []sim.VertexFunc{vertex},
		EdgeFns:    []sim.EdgeFunc{edge},
		VertexJacs: []operator.VertexJacobian{vjac},
		EdgeJacs:   []operator.EdgeJacobian{ejac},
	}, nil
}
