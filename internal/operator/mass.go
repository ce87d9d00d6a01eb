package operator

import (
	"fmt"
	"sort"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"gonum.org/v1/gonum/mat"
)

// MulVecToer is the product form of a mass matrix: dst = M * x.
// Both Identity and the block-diagonal matrices built here satisfy it
// in O(nnz) without going through element access.
type MulVecToer interface {
	mat.Matrix
	MulVecTo(dst, x []float64)
}

// Identity is the n x n identity operator. It allocates nothing.
type Identity int

func (id Identity) Dims() (int, int) { return int(id), int(id) }

func (id Identity) At(i, j int) float64 {
	if i < 0 || i >= int(id) {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= int(id) {
		panic(mat.ErrColAccess)
	}
	if i == j {
		return 1
	}
	return 0
}

func (id Identity) T() mat.Matrix { return id }

func (id Identity) MulVecTo(dst, x []float64) {
	copy(dst, x)
}

// blockDiag is a block-diagonal matrix over an identity background:
// every diagonal position not covered by a block is 1, everything
// else off the blocks is 0. Blocks never overlap because they sit on
// the structure's disjoint entity ranges.
type blockDiag struct {
	n      int
	offs   []int // sorted block start offsets
	blocks []mat.Matrix
}

func (m *blockDiag) Dims() (int, int) { return m.n, m.n }

func (m *blockDiag) At(i, j int) float64 {
	if i < 0 || i >= m.n {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.n {
		panic(mat.ErrColAccess)
	}
	if k := m.blockOf(i); k >= 0 {
		off := m.offs[k]
		d, _ := m.blocks[k].Dims()
		if j >= off && j < off+d {
			return m.blocks[k].At(i-off, j-off)
		}
		return 0
	}
	if i == j {
		return 1
	}
	return 0
}

// blockOf returns the index of the block whose row range contains i,
// or -1 when i lies on the identity background.
func (m *blockDiag) blockOf(i int) int {
	k := sort.SearchInts(m.offs, i+1) - 1
	if k < 0 {
		return -1
	}
	d, _ := m.blocks[k].Dims()
	if i < m.offs[k]+d {
		return k
	}
	return -1
}

func (m *blockDiag) T() mat.Matrix { return mat.Transpose{Matrix: m} }

func (m *blockDiag) MulVecTo(dst, x []float64) {
	if len(dst) != m.n || len(x) != m.n {
		panic(mat.ErrShape)
	}
	copy(dst, x)
	for k, b := range m.blocks {
		off := m.offs[k]
		d, _ := b.Dims()
		for r := 0; r < d; r++ {
			s := 0.0
			for c := 0; c < d; c++ {
				s += b.At(r, c) * x[off+c]
			}
			dst[off+r] = s
		}
	}
}

// collect appends the non-identity blocks of one entity group to m,
// placing each at its entity offset plus shift. A nil block means
// identity and is skipped. Each non-nil block must be square with the
// entity's dimension.
func (m *blockDiag) collect(kind string, offs, dims []int, shift int, blocks []mat.Matrix) error {
	for k, b := range blocks {
		if b == nil {
			continue
		}
		r, c := b.Dims()
		if r != dims[k] || c != dims[k] {
			return fmt.Errorf("%w: %s %d mass block is %dx%d, want %dx%d", dyn.ErrDimensionMismatch, kind, k, r, c, dims[k], dims[k])
		}
		m.offs = append(m.offs, offs[k]+shift)
		m.blocks = append(m.blocks, b)
	}
	return nil
}

// VertexMass builds the mass matrix of the vertex subsystem from
// per-vertex blocks. A nil block means identity for that vertex; when
// every block is nil the identity operator is returned without
// allocating.
func VertexMass(st *network.Structure, blocks []mat.Matrix) (MulVecToer, error) {
	if blocks != nil && len(blocks) != st.NumV {
		return nil, fmt.Errorf("%w: %d mass blocks for %d vertices", dyn.ErrDimensionMismatch, len(blocks), st.NumV)
	}
	m := &blockDiag{n: st.VertexDim()}
	if err := m.collect("vertex", st.VOff, st.VDims, 0, blocks); err != nil {
		return nil, err
	}
	if len(m.blocks) == 0 {
		return Identity(m.n), nil
	}
	return m, nil
}

// SystemMass builds the mass matrix of the combined vertex+edge
// system. Edge blocks are placed after all vertex blocks, at their
// edge offset shifted by the total vertex dimension.
func SystemMass(st *network.Structure, vblocks, eblocks []mat.Matrix) (MulVecToer, error) {
	if vblocks != nil && len(vblocks) != st.NumV {
		return nil, fmt.Errorf("%w: %d mass blocks for %d vertices", dyn.ErrDimensionMismatch, len(vblocks), st.NumV)
	}
	if eblocks != nil && len(eblocks) != st.NumE {
		return nil, fmt.Errorf("%w: %d mass blocks for %d edges", dyn.ErrDimensionMismatch, len(eblocks), st.NumE)
	}
	m := &blockDiag{n: st.VertexDim() + st.EdgeDim()}
	if err := m.collect("vertex", st.VOff, st.VDims, 0, vblocks); err != nil {
		return nil, err
	}
	if err := m.collect("edge", st.EOff, st.EDims, st.VertexDim(), eblocks); err != nil {
		return nil, err
	}
	if len(m.blocks) == 0 {
		return Identity(m.n), nil
	}
	return m, nil
}
