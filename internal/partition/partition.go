// Package partition computes contiguous index layouts for flat buffers.
//
// Given per-entity dimensions, it produces the starting offset and the
// half-open index range of each entity inside a single shared buffer.
// Ranges are pairwise disjoint, ordered, and cover [base, base+sum(dims))
// with no gaps.
package partition

// Range is a half-open interval [Start, End) into a flat buffer.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether the absolute buffer position k falls in r.
func (r Range) Contains(k int) bool { return k >= r.Start && k < r.End }

// Offsets returns the starting offset of each entity, laying the
// entities out back to back starting at base. A zero dimension yields
// an entity whose offset equals the next entity's offset.
func Offsets(dims []int, base int) []int {
	offs := make([]int, len(dims))
	for i, d := range dims {
		offs[i] = base
		base += d
	}
	return offs
}

// Ranges returns the half-open range of each entity, laid out back to
// back starting at base. Zero dimensions yield empty ranges.
func Ranges(dims []int, base int) []Range {
	rs := make([]Range, len(dims))
	for i, d := range dims {
		rs[i] = Range{Start: base, End: base + d}
		base += d
	}
	return rs
}

// RangesFrom derives ranges directly from precomputed offsets without
// re-accumulating. offsets and dims must have equal length.
func RangesFrom(offsets, dims []int) []Range {
	rs := make([]Range, len(dims))
	for i, d := range dims {
		rs[i] = Range{Start: offsets[i], End: offsets[i] + d}
	}
	return rs
}

// Total returns the summed dimension of all entities.
func Total(dims []int) int {
	n := 0
	for _, d := range dims {
		n += d
	}
	return n
}
