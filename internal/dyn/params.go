package dyn

// Params carries per-entity parameter slices for a network system.
// Either slice may be nil (no parameters for that entity class);
// otherwise its length must equal the entity count, which the
// consuming layer validates against its structure.
type Params struct {
	Vertex [][]float64
	Edge   [][]float64
}

// VertexAt returns vertex i's parameters, or nil when none are set.
func (p Params) VertexAt(i int) []float64 {
	if p.Vertex == nil {
		return nil
	}
	return p.Vertex[i]
}

// EdgeAt returns edge j's parameters, or nil when none are set.
func (p Params) EdgeAt(j int) []float64 {
	if p.Edge == nil {
		return nil
	}
	return p.Edge[j]
}

// UniformVertex returns n copies of the same parameter slice.
func UniformVertex(p []float64, n int) [][]float64 {
	ps := make([][]float64, n)
	for i := range ps {
		ps[i] = p
	}
	return ps
}

// UniformEdge returns n copies of the same parameter slice.
func UniformEdge(p []float64, n int) [][]float64 {
	return UniformVertex(p, n)
}

// SameBuffer reports whether a and b are windows onto the same backing
// array with identical bounds, i.e. the same buffer identity.
func SameBuffer(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
