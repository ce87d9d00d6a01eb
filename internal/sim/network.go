package sim

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/state"
)

// VertexFunc computes one vertex's derivative window from the vertex
// state and the value windows of its incident edges.
type VertexFunc func(dx, x state.View, in, out []state.View, p []float64, t float64)

// EdgeFunc computes one edge's value window from its endpoint states.
type EdgeFunc func(e, xs, xd state.View, p []float64, t float64)

// Network is a dynamical system on a graph: edges are evaluated first
// into the edge buffer, then every vertex derivative aggregates its
// incident edge windows. It satisfies System.
type Network struct {
	st      *network.Structure
	data    *state.Data
	vfns    []VertexFunc
	efns    []EdgeFunc
	params  dyn.Params
	workers int
}

// Below this many entities the RHS loops stay on one goroutine.
const minChunk = 8

// NewNetwork wires evolution functions to a structure. vfns must have
// length 1 (uniform) or st.NumV; efns length 1 or st.NumE.
func NewNetwork(st *network.Structure, data *state.Data, vfns []VertexFunc, efns []EdgeFunc, params dyn.Params, workers int) (*Network, error) {
	if len(vfns) != 1 && len(vfns) != st.NumV {
		return nil, fmt.Errorf("%w: %d vertex funcs for %d vertices", dyn.ErrDimensionMismatch, len(vfns), st.NumV)
	}
	if len(efns) != 1 && len(efns) != st.NumE && !(len(efns) == 0 && st.NumE == 0) {
		return nil, fmt.Errorf("%w: %d edge funcs for %d edges", dyn.ErrDimensionMismatch, len(efns), st.NumE)
	}
	if params.Vertex != nil && len(params.Vertex) != st.NumV {
		return nil, fmt.Errorf("%w: %d vertex parameter sets for %d vertices", dyn.ErrDimensionMismatch, len(params.Vertex), st.NumV)
	}
	if params.Edge != nil && len(params.Edge) != st.NumE {
		return nil, fmt.Errorf("%w: %d edge parameter sets for %d edges", dyn.ErrDimensionMismatch, len(params.Edge), st.NumE)
	}
	return &Network{st: st, data: data, vfns: vfns, efns: efns, params: params, workers: workers}, nil
}

func (nw *Network) Dim() int { return nw.st.VertexDim() }

// Structure returns the index tables the network was built over.
func (nw *Network) Structure() *network.Structure { return nw.st }

// Params returns the per-entity parameters of the network.
func (nw *Network) Params() dyn.Params { return nw.params }

func (nw *Network) vertexFn(i int) VertexFunc {
	if len(nw.vfns) == 1 {
		return nw.vfns[0]
	}
	return nw.vfns[i]
}

func (nw *Network) edgeFn(j int) EdgeFunc {
	if len(nw.efns) == 1 {
		return nw.efns[0]
	}
	return nw.efns[j]
}

// Derive computes dst = f(x, t). When x is not the buffer the view set
// was built over, the views are rebuilt for the new identity first.
// Each edge writes only its own window and each vertex only its own
// derivative range, so both loops run chunked when workers > 1.
func (nw *Network) Derive(dst, x dyn.State, t float64) {
	if !dyn.SameBuffer(x, nw.data.VBuf) {
		d, err := state.NewData(nw.st, x, nw.data.EBuf)
		if err != nil {
			panic(err) // x does not match the structure's totals
		}
		nw.data = d
	}
	st, data, params := nw.st, nw.data, nw.params

	dyn.ParallelFor(nw.workers, st.NumE, minChunk, func(start, end int) {
		for j := start; j < end; j++ {
			nw.edgeFn(j)(data.EdgeValue(j), data.EdgeSource(j), data.EdgeDest(j), params.EdgeAt(j), t)
		}
	})
	dyn.ParallelFor(nw.workers, st.NumV, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			dx := state.NewView(dst, st.VOff[i], st.VDims[i])
			nw.vertexFn(i)(dx, data.Vertex(i), data.InEdges(i), data.OutEdges(i), params.VertexAt(i), t)
		}
	})
}
