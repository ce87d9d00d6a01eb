package operator

import (
	"fmt"

	"github.com/san-kum/netdyn/internal/dyn"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/state"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Below this many entities a loop is not worth spreading over workers.
const minChunk = 8

// VertexJacobian writes vertex i's Jacobian block into dst, given the
// vertex's current state window, its parameters, and the time.
type VertexJacobian func(dst *mat.Dense, x state.View, p []float64, t float64)

// EdgeJacobian writes edge j's derivative blocks with respect to its
// source and destination vertex states into src and dst.
type EdgeJacobian func(src, dst *mat.Dense, xs, xd state.View, p []float64, t float64)

// Operator is the stateful linear operator y = J(x, p, t) * z for the
// block Jacobian of a network system. Update refreshes the Jacobian
// blocks for a (state, parameters, time) triple; Apply and ApplyTo
// compute products with the last-refreshed blocks. A freshly
// constructed Operator holds zero blocks until its first Update.
//
// The per-vertex and per-edge loops write disjoint blocks and scratch
// buffers, so with workers > 1 they run chunked across goroutines,
// with a barrier between the edge and vertex phases of ApplyTo.
type Operator struct {
	st      *network.Structure
	data    *state.Data
	storage *Storage

	vfns []VertexJacobian
	efns []EdgeJacobian

	x       []float64
	params  dyn.Params
	t       float64
	workers int
}

// New builds an Operator over the given structure, data, and storage.
// vfns must have length 1 (applied uniformly) or st.NumV; efns length
// 1 or st.NumE. workers <= 1 selects sequential execution.
func New(st *network.Structure, data *state.Data, storage *Storage, vfns []VertexJacobian, efns []EdgeJacobian, x0 []float64, params dyn.Params, t0 float64, workers int) (*Operator, error) {
	if len(vfns) != 1 && len(vfns) != st.NumV {
		return nil, fmt.Errorf("%w: %d vertex Jacobian funcs for %d vertices", dyn.ErrDimensionMismatch, len(vfns), st.NumV)
	}
	if len(efns) != 1 && len(efns) != st.NumE && !(len(efns) == 0 && st.NumE == 0) {
		return nil, fmt.Errorf("%w: %d edge Jacobian funcs for %d edges", dyn.ErrDimensionMismatch, len(efns), st.NumE)
	}
	if len(x0) != st.VertexDim() {
		return nil, fmt.Errorf("%w: state length %d, structure needs %d", dyn.ErrDimensionMismatch, len(x0), st.VertexDim())
	}
	if err := checkParams(st, params); err != nil {
		return nil, err
	}
	return &Operator{
		st:      st,
		data:    data,
		storage: storage,
		vfns:    vfns,
		efns:    efns,
		x:       x0,
		params:  params,
		t:       t0,
		workers: workers,
	}, nil
}

func checkParams(st *network.Structure, p dyn.Params) error {
	if p.Vertex != nil && len(p.Vertex) != st.NumV {
		return fmt.Errorf("%w: %d vertex parameter sets for %d vertices", dyn.ErrDimensionMismatch, len(p.Vertex), st.NumV)
	}
	if p.Edge != nil && len(p.Edge) != st.NumE {
		return fmt.Errorf("%w: %d edge parameter sets for %d edges", dyn.ErrDimensionMismatch, len(p.Edge), st.NumE)
	}
	return nil
}

func (o *Operator) vertexFn(i int) VertexJacobian {
	if len(o.vfns) == 1 {
		return o.vfns[0]
	}
	return o.vfns[i]
}

func (o *Operator) edgeFn(j int) EdgeJacobian {
	if len(o.efns) == 1 {
		return o.efns[0]
	}
	return o.efns[j]
}

// Size returns (n, n) where n is the total vertex dimension.
func (o *Operator) Size() (int, int) {
	n := o.st.VertexDim()
	return n, n
}

// Update refreshes every Jacobian block for the new (state,
// parameters, time) triple and stores the triple. When the identity of
// the state buffer changed, the view set is rebuilt first. Graph Data
// buffer contents are not mutated.
func (o *Operator) Update(x []float64, params dyn.Params, t float64) error {
	if len(x) != o.st.VertexDim() {
		return fmt.Errorf("%w: state length %d, structure needs %d", dyn.ErrDimensionMismatch, len(x), o.st.VertexDim())
	}
	if err := checkParams(o.st, params); err != nil {
		return err
	}

	if !dyn.SameBuffer(x, o.data.VBuf) {
		d, err := state.NewData(o.st, x, o.data.EBuf)
		if err != nil {
			return err
		}
		o.data = d
	}

	dyn.ParallelFor(o.workers, o.st.NumV, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			o.vertexFn(i)(o.storage.Vertex(i), o.data.Vertex(i), params.VertexAt(i), t)
		}
	})
	dyn.ParallelFor(o.workers, o.st.NumE, minChunk, func(start, end int) {
		for j := start; j < end; j++ {
			o.edgeFn(j)(o.storage.EdgeSrc(j), o.storage.EdgeDst(j), o.data.EdgeSource(j), o.data.EdgeDest(j), params.EdgeAt(j), t)
		}
	})

	o.x = x
	o.params = params
	o.t = t
	return nil
}

// Apply returns J * z in a freshly allocated vector.
func (o *Operator) Apply(z []float64) []float64 {
	dst := make([]float64, o.st.VertexDim())
	o.ApplyTo(dst, z)
	return dst
}

// ApplyTo computes dst = J * z in place. dst and z must both have the
// total vertex dimension; ApplyTo panics otherwise, matching gonum's
// convention for shape errors in hot paths. dst and z may not alias.
//
// Phase 1 fills each edge's scratch with
// srcBlock * z[srcRange] + dstBlock * z[dstRange]; the second product
// accumulates into the scratch directly so no temporary is needed.
// Phase 2 writes each vertex's output range as
// vertexBlock * z[vertexRange] plus the scratch of every incoming
// edge. Vertices with no incoming edges get the vertex term alone.
func (o *Operator) ApplyTo(dst, z []float64) {
	n := o.st.VertexDim()
	if len(z) != n || len(dst) != n {
		panic(mat.ErrShape)
	}
	st := o.st

	dyn.ParallelFor(o.workers, st.NumE, minChunk, func(start, end int) {
		for j := start; j < end; j++ {
			s := o.storage.scratch[j]
			zs := z[st.SrcRanges[j].Start:st.SrcRanges[j].End]
			zd := z[st.DstRanges[j].Start:st.DstRanges[j].End]
			mulVec(s, o.storage.edgeSrc[j], zs)
			mulVecAdd(s, o.storage.edgeDst[j], zd)
		}
	})
	// ParallelFor waits for every chunk, so all scratch writes have
	// completed before the vertex phase reads them.
	dyn.ParallelFor(o.workers, st.NumV, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			r := st.VRanges[i]
			y := dst[r.Start:r.End]
			mulVec(y, o.storage.vertex[i], z[r.Start:r.End])
			for _, inc := range st.InEdges[i] {
				floats.Add(y, o.storage.scratch[inc.Edge])
			}
		}
	})
}

// Evaluate refreshes the coefficients and returns J * x, the linear
// system's derivative at (x, params, t).
func (o *Operator) Evaluate(x []float64, params dyn.Params, t float64) ([]float64, error) {
	if err := o.Update(x, params, t); err != nil {
		return nil, err
	}
	return o.Apply(x), nil
}

// EvaluateInto refreshes the coefficients and computes dst = J * x.
func (o *Operator) EvaluateInto(dst, x []float64, params dyn.Params, t float64) error {
	if err := o.Update(x, params, t); err != nil {
		return err
	}
	o.ApplyTo(dst, x)
	return nil
}

// MulVecTo computes dst = J * z with the last-refreshed coefficients.
// It satisfies the matrix-free interface iterative linear solvers
// consume.
func (o *Operator) MulVecTo(dst, z []float64) {
	o.ApplyTo(dst, z)
}

// mulVec computes dst = m * x over the block's raw storage.
func mulVec(dst []float64, m *mat.Dense, x []float64) {
	rm := m.RawMatrix()
	for r := 0; r < rm.Rows; r++ {
		row := rm.Data[r*rm.Stride : r*rm.Stride+rm.Cols]
		dst[r] = floats.Dot(row, x)
	}
}

// mulVecAdd computes dst += m * x, fused so no temporary product
// vector is required.
func mulVecAdd(dst []float64, m *mat.Dense, x []float64) {
	rm := m.RawMatrix()
	for r := 0; r < rm.Rows; r++ {
		row := rm.Data[r*rm.Stride : r*rm.Stride+rm.Cols]
		dst[r] += floats.Dot(row, x)
	}
}
