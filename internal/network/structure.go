// Package network precomputes the index tables a simulation needs to
// route data between a flat vertex buffer, a flat edge buffer, and the
// incidence relationships of a directed graph.
//
// A Structure is built once per (topology, dimensions) choice and is
// immutable afterwards. Every downstream access path depends on its
// partition invariant: entity ranges are contiguous, pairwise disjoint,
// and cover each buffer exactly.
package network

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/partition"
)

// Incidence locates one edge incident to a vertex: the edge's index
// plus the offset and dimension of its window in the edge buffer.
type Incidence struct {
	Edge   int
	Offset int
	Dim    int
}

// Structure holds the topology-derived index tables of a network.
type Structure struct {
	NumV int
	NumE int

	VDims []int
	EDims []int

	// Endpoint vertex index per edge.
	Src []int
	Dst []int

	// Offsets and half-open ranges per entity within its buffer.
	VOff    []int
	EOff    []int
	VRanges []partition.Range
	ERanges []partition.Range

	// Endpoint windows per edge, duplicated from the vertex tables so
	// edge-side code never indexes through Src/Dst first.
	SrcOff    []int
	DstOff    []int
	SrcRanges []partition.Range
	DstRanges []partition.Range

	// Per vertex, the edges where it is source (OutEdges) or
	// destination (InEdges), in edge order.
	OutEdges [][]Incidence
	InEdges  [][]Incidence

	vTotal int
	eTotal int
}

// NewStructure builds the index tables for the given topology and
// per-entity state dimensions. len(vDims) must equal top.NumVertices
// and len(eDims) must equal len(top.Edges); every edge endpoint must
// lie in [0, NumVertices). Incidence lists are grouped in a single
// pass over the edge list.
func NewStructure(top Topology, vDims, eDims []int) (*Structure, error) {
	if len(vDims) != top.NumVertices {
		return nil, fmt.Errorf("%w: %d vertex dims for %d vertices", dyn.ErrDimensionMismatch, len(vDims), top.NumVertices)
	}
	if len(eDims) != len(top.Edges) {
		return nil, fmt.Errorf("%w: %d edge dims for %d edges", dyn.ErrDimensionMismatch, len(eDims), len(top.Edges))
	}
	for i, d := range vDims {
		if d < 0 {
			return nil, fmt.Errorf("%w: vertex %d has negative dimension %d", dyn.ErrDimensionMismatch, i, d)
		}
	}
	for j, d := range eDims {
		if d < 0 {
			return nil, fmt.Errorf("%w: edge %d has negative dimension %d", dyn.ErrDimensionMismatch, j, d)
		}
	}
	for j, e := range top.Edges {
		if e.From < 0 || e.From >= top.NumVertices || e.To < 0 || e.To >= top.NumVertices {
			return nil, fmt.Errorf("%w: edge %d (%d -> %d) with %d vertices", dyn.ErrBadTopology, j, e.From, e.To, top.NumVertices)
		}
	}

	nv, ne := top.NumVertices, len(top.Edges)

	st := &Structure{
		NumV:      nv,
		NumE:      ne,
		VDims:     append([]int(nil), vDims...),
		EDims:     append([]int(nil), eDims...),
		Src:       make([]int, ne),
		Dst:       make([]int, ne),
		VOff:      partition.Offsets(vDims, 0),
		EOff:      partition.Offsets(eDims, 0),
		SrcOff:    make([]int, ne),
		DstOff:    make([]int, ne),
		SrcRanges: make([]partition.Range, ne),
		DstRanges: make([]partition.Range, ne),
		OutEdges:  make([][]Incidence, nv),
		InEdges:   make([][]Incidence, nv),
		vTotal:    partition.Total(vDims),
		eTotal:    partition.Total(eDims),
	}
	st.VRanges = partition.RangesFrom(st.VOff, vDims)
	st.ERanges = partition.RangesFrom(st.EOff, eDims)

	for j, e := range top.Edges {
		st.Src[j] = e.From
		st.Dst[j] = e.To
		st.SrcOff[j] = st.VOff[e.From]
		st.DstOff[j] = st.VOff[e.To]
		st.SrcRanges[j] = st.VRanges[e.From]
		st.DstRanges[j] = st.VRanges[e.To]

		inc := Incidence{Edge: j, Offset: st.EOff[j], Dim: eDims[j]}
		st.OutEdges[e.From] = append(st.OutEdges[e.From], inc)
		st.InEdges[e.To] = append(st.InEdges[e.To], inc)
	}

	return st, nil
}

// VertexDim returns the total vertex buffer length, sum(VDims).
func (st *Structure) VertexDim() int { return st.vTotal }

// EdgeDim returns the total edge buffer length, sum(EDims).
func (st *Structure) EdgeDim() int { return st.eTotal }
