package state

// View is a zero-copy window into a flat buffer: the shared backing
// slice plus an (offset, length) pair. Views are cheap value types and
// never own or copy data; writing through one view is visible through
// every other view that resolves to the same buffer positions.
//
// Indices are 0-based and must lie in [0, Len()); out-of-range access
// panics via the runtime's slice bounds check.
type View struct {
	buf []float64
	off int
	n   int
}

// NewView windows buf at [off, off+n).
func NewView(buf []float64, off, n int) View {
	_ = buf[off : off+n] // surface bad windows at construction
	return View{buf: buf, off: off, n: n}
}

func (v View) Len() int { return v.n }

func (v View) At(k int) float64 {
	if k < 0 || k >= v.n {
		panic("state: view index out of range")
	}
	return v.buf[v.off+k]
}

func (v View) Set(k int, x float64) {
	if k < 0 || k >= v.n {
		panic("state: view index out of range")
	}
	v.buf[v.off+k] = x
}

// AddAt accumulates x into position k.
func (v View) AddAt(k int, x float64) {
	if k < 0 || k >= v.n {
		panic("state: view index out of range")
	}
	v.buf[v.off+k] += x
}

// Slice returns the raw window. Mutations through the returned slice
// are mutations of the underlying buffer.
func (v View) Slice() []float64 {
	return v.buf[v.off : v.off+v.n]
}

// Fill sets every position of the window to x.
func (v View) Fill(x float64) {
	s := v.Slice()
	for i := range s {
		s[i] = x
	}
}

// CopyFrom copies min(Len, len(src)) values from src into the window.
func (v View) CopyFrom(src []float64) {
	copy(v.Slice(), src)
}
