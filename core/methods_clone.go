// File: methods_clone.go
// Role: Cloning and clearing graph instances.
// Determinism:
//   - Clone replays each node's outgoing edges in insertion order, so the clone
//     iterates exactly like the source.
// Concurrency:
//   - Read lock on the source for the whole copy; the clone is private until returned.

package core

// CopyEdgeFunc deep-copies an edge payload and returns the weight function bound to
// the copy (nil for an unweighted edge).
type CopyEdgeFunc[E any] func(payload E) (E, WeightFunc)

// Clone returns a deep copy of the graph: same keys, same topology, same edge order,
// and payloads produced by copyNode / copyEdge. A nil copier shares the payload
// (and, for edges, the original weight function).
//
// Visited flags are copied as-is.
//
// Complexity: O(V + E).
func (g *Graph[N, E]) Clone(copyNode func(N) N, copyEdge CopyEdgeFunc[E]) *Graph[N, E] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := NewGraph[N, E]()
	var (
		k int
		n *Node[N, E]
	)
	for k, n = range g.nodes {
		payload := n.Payload
		if copyNode != nil {
			payload = copyNode(payload)
		}
		clone.nodes[k] = &Node[N, E]{Key: k, Payload: payload, out: make([]*Edge[N, E], 0, len(n.out))}
	}
	var (
		e      *Edge[N, E]
		ne     *Edge[N, E]
		p      E
		weight WeightFunc
	)
	for k, n = range g.nodes {
		for _, e = range n.out {
			p, weight = e.Payload, e.weight
			if copyEdge != nil {
				p, weight = copyEdge(e.Payload)
			}
			ne = clone.linkLocked(e.From, e.To, p, weight)
			ne.Visited = e.Visited
		}
	}

	return clone
}

// Clear drops every node and edge.
// Complexity: O(1) for map reallocation.
func (g *Graph[N, E]) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[int]*Node[N, E])
	g.edges = make(map[edgeKey]*Edge[N, E])
	g.in = make(map[int]map[int]struct{})
}

// ResetVisited clears the Visited flag on every edge.
func (g *Graph[N, E]) ResetVisited() {
	g.mu.Lock()
	defer g.mu.Unlock()

	var e *Edge[N, E]
	for _, e = range g.edges {
		e.Visited = false
	}
}
