// Package state pairs the two flat buffers of a network simulation
// (all vertex states, all edge states) with precomputed zero-copy
// views derived from a network.Structure.
//
// A Data is built once per buffer identity and reused; buffer contents
// change every step, the view topology never does. Many views alias
// the same buffer, so correctness rests on the structure's disjoint
// partition invariant: no two entities share buffer positions, and at
// most one writer touches an entity's window at a time.
package state

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
)

// Data owns a vertex buffer and an edge buffer plus every per-entity
// and per-incidence view into them.
type Data struct {
	Structure *network.Structure
	VBuf      []float64
	EBuf      []float64

	vertices []View
	edges    []View
	srcOf    []View // per edge, the window of its source vertex
	dstOf    []View // per edge, the window of its destination vertex
	outOf    [][]View
	inOf     [][]View
}

// NewData builds the view set over the supplied buffers. Both buffers
// must be pre-sized to the structure's totals.
func NewData(st *network.Structure, vbuf, ebuf []float64) (*Data, error) {
	if len(vbuf) != st.VertexDim() {
		return nil, fmt.Errorf("%w: vertex buffer length %d, structure needs %d", dyn.ErrDimensionMismatch, len(vbuf), st.VertexDim())
	}
	if len(ebuf) != st.EdgeDim() {
		return nil, fmt.Errorf("%w: edge buffer length %d, structure needs %d", dyn.ErrDimensionMismatch, len(ebuf), st.EdgeDim())
	}

	d := &Data{
		Structure: st,
		VBuf:      vbuf,
		EBuf:      ebuf,
		vertices:  make([]View, st.NumV),
		edges:     make([]View, st.NumE),
		srcOf:     make([]View, st.NumE),
		dstOf:     make([]View, st.NumE),
		outOf:     make([][]View, st.NumV),
		inOf:      make([][]View, st.NumV),
	}

	for i := 0; i < st.NumV; i++ {
		d.vertices[i] = NewView(vbuf, st.VOff[i], st.VDims[i])
	}
	for j := 0; j < st.NumE; j++ {
		d.edges[j] = NewView(ebuf, st.EOff[j], st.EDims[j])
		d.srcOf[j] = d.vertices[st.Src[j]]
		d.dstOf[j] = d.vertices[st.Dst[j]]
	}
	for i := 0; i < st.NumV; i++ {
		d.outOf[i] = incidenceViews(ebuf, st.OutEdges[i])
		d.inOf[i] = incidenceViews(ebuf, st.InEdges[i])
	}

	return d, nil
}

func incidenceViews(ebuf []float64, incs []network.Incidence) []View {
	vs := make([]View, len(incs))
	for k, inc := range incs {
		vs[k] = NewView(ebuf, inc.Offset, inc.Dim)
	}
	return vs
}

// Vertex returns the window of vertex i's state.
func (d *Data) Vertex(i int) View { return d.vertices[i] }

// EdgeValue returns the window of edge j's state.
func (d *Data) EdgeValue(j int) View { return d.edges[j] }

// EdgeSource returns the window of edge j's source vertex state.
func (d *Data) EdgeSource(j int) View { return d.srcOf[j] }

// EdgeDest returns the window of edge j's destination vertex state.
func (d *Data) EdgeDest(j int) View { return d.dstOf[j] }

// OutEdges returns the edge-state windows of every edge sourced at
// vertex i, in edge order.
func (d *Data) OutEdges(i int) []View { return d.outOf[i] }

// InEdges returns the edge-state windows of every edge terminating at
// vertex i, in edge order.
func (d *Data) InEdges(i int) []View { return d.inOf[i] }
