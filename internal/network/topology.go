package network

// Edge is a directed connection between two vertices of a network,
// identified by their indices in [0, NumVertices).
type Edge struct {
	From int
	To   int
}

// Topology is the pure connectivity of a network: a vertex count and
// an ordered edge list. It carries no state dimensions.
type Topology struct {
	NumVertices int
	Edges       []Edge
}

// Symmetrize returns a topology with a reversed twin for every edge,
// the directed representation of an undirected graph. Originals keep
// their indices; reversals are appended in order.
func Symmetrize(top Topology) Topology {
	edges := make([]Edge, 0, 2*len(top.Edges))
	edges = append(edges, top.Edges...)
	for _, e := range top.Edges {
		edges = append(edges, Edge{From: e.To, To: e.From})
	}
	return Topology{NumVertices: top.NumVertices, Edges: edges}
}

// Path returns the line topology 0 -> 1 -> ... -> n-1.
func Path(n int) Topology {
	edges := make([]Edge, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, Edge{From: i, To: i + 1})
	}
	return Topology{NumVertices: n, Edges: edges}
}

// Ring returns the cycle topology on n vertices.
func Ring(n int) Topology {
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, Edge{From: i, To: (i + 1) % n})
	}
	return Topology{NumVertices: n, Edges: edges}
}

// Star returns the topology with edges from vertex 0 to every other vertex.
func Star(n int) Topology {
	edges := make([]Edge, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{From: 0, To: i})
	}
	return Topology{NumVertices: n, Edges: edges}
}
