// Package operator implements the matrix-free Jacobian-vector engine
// of a network dynamical system: per-entity Jacobian blocks refreshed
// through user callbacks, and the action of the assembled block
// Jacobian on a vector, computed without ever materializing the full
// matrix. It also builds the (possibly identity) mass matrix of the
// combined system.
package operator

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"gonum.org/v1/gonum/mat"
)

// Storage holds the mutable Jacobian blocks of a network: one square
// block per vertex, a (source, destination) derivative pair per edge,
// and one scratch vector per edge for the edge's contribution before
// accumulation into its destination vertex.
//
// Edge blocks are shaped per edge as dstDim x srcDim and
// dstDim x dstDim, so networks with heterogeneous vertex dimensions
// are fully supported. Blocks are allocated once and refreshed in
// place; they are never resized.
type Storage struct {
	vertex  []*mat.Dense
	edgeSrc []*mat.Dense
	edgeDst []*mat.Dense
	scratch [][]float64
}

// NewStorage allocates Jacobian blocks for the given structure. Every
// vertex dimension must be at least 1.
func NewStorage(st *network.Structure) (*Storage, error) {
	for i, d := range st.VDims {
		if d < 1 {
			return nil, fmt.Errorf("%w: vertex %d has dimension %d, Jacobian blocks need >= 1", dyn.ErrDimensionMismatch, i, d)
		}
	}

	s := &Storage{
		vertex:  make([]*mat.Dense, st.NumV),
		edgeSrc: make([]*mat.Dense, st.NumE),
		edgeDst: make([]*mat.Dense, st.NumE),
		scratch: make([][]float64, st.NumE),
	}
	for i, d := range st.VDims {
		s.vertex[i] = mat.NewDense(d, d, nil)
	}
	for j := 0; j < st.NumE; j++ {
		srcDim := st.VDims[st.Src[j]]
		dstDim := st.VDims[st.Dst[j]]
		s.edgeSrc[j] = mat.NewDense(dstDim, srcDim, nil)
		s.edgeDst[j] = mat.NewDense(dstDim, dstDim, nil)
		s.scratch[j] = make([]float64, dstDim)
	}
	return s, nil
}

// Vertex returns the mutable Jacobian block of vertex i.
func (s *Storage) Vertex(i int) *mat.Dense { return s.vertex[i] }

// EdgeSrc returns edge j's derivative block with respect to its
// source vertex state.
func (s *Storage) EdgeSrc(j int) *mat.Dense { return s.edgeSrc[j] }

// EdgeDst returns edge j's derivative block with respect to its
// destination vertex state.
func (s *Storage) EdgeDst(j int) *mat.Dense { return s.edgeDst[j] }
