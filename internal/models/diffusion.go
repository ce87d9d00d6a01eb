package models

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/operator"
	"github.com/san-kum/netdyn/internal/sim"
	"github.com/san-kum/netdyn/internal/state"
	"gonum.org/v1/gonum/mat"
)

// Diffusion is scalar heat flow on an undirected graph: each link is
// represented by a directed edge pair carrying sigma*(x_src - x_dst),
// and every vertex sums its incoming flows. The total state is
// conserved and relaxes toward the uniform average.
//
// init must have one value per vertex; a nil init starts from a unit
// spike at vertex 0.
func Diffusion(top network.Topology, sigma float64, init []float64) (*Model, error) {
	sym := network.Symmetrize(top)
	st, err := network.NewStructure(sym, ones(sym.NumVertices), ones(len(sym.Edges)))
	if err != nil {
		return nil, err
	}

	x0 := make(dyn.State, st.VertexDim())
	if init == nil {
		x0[0] = 1
	} else {
		if len(init) != st.VertexDim() {
			return nil, fmt.Errorf("%w: %d initial values for %d vertices", dyn.ErrDimensionMismatch, len(init), top.NumVertices)
		}
		copy(x0, init)
	}

	params := dyn.Params{Edge: dyn.UniformEdge([]float64{sigma}, st.NumE)}

	vertex := func(dx, x state.View, in, out []state.View, p []float64, t float64) {
		acc := 0.0
		for _, e := range in {
			acc += e.At(0)
		}
		dx.Set(0, acc)
	}
	edge := func(e, xs, xd state.View, p []float64, t float64) {
		e.Set(0, p[0]*(xs.At(0)-xd.At(0)))
	}

	// The vertex term itself has no explicit state dependence; all
	// coupling enters through the edge blocks.
	vjac := func(dst *mat.Dense, x state.View, p []float64, t float64) {
		dst.Set(0, 0, 0)
	}
	ejac := func(src, dst *mat.Dense, xs, xd state.View, p []float64, t float64) {
		src.Set(0, 0, p[0])
		dst.Set(0, 0, -p[0])
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
