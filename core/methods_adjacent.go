// File: methods_adjacent.go
// Role: Neighborhood and catalog queries: Successors, Predecessors, Degree,
//       InDegree, NodeCount, EdgeCount, Nodes, Edges, Keys.
// Determinism:
//   - Successors/Predecessors/Keys return keys sorted ascending.
//   - Nodes() sorts by Key; Edges() sorts by (From, To).
// Concurrency:
//   - All methods hold the read lock for their whole duration.

package core

import (
	"fmt"
	"sort"
)

// Successors returns the keys reachable from key through one outgoing edge, sorted ascending.
//
// Errors:
//   - ErrNodeNotFound: key is absent.
//
// Complexity: O(d log d).
func (g *Graph[N, E]) Successors(key int) ([]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}
	out := make([]int, 0, len(n.out))
	var e *Edge[N, E]
	for _, e = range n.out {
		out = append(out, e.To)
	}
	sort.Ints(out)

	return out, nil
}

// Predecessors returns the keys with an edge into key, sorted ascending.
//
// Errors:
//   - ErrNodeNotFound: key is absent.
//
// Complexity: O(d log d).
func (g *Graph[N, E]) Predecessors(key int) ([]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[key]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}
	out := make([]int, 0, len(g.in[key]))
	var from int
	for from = range g.in[key] {
		out = append(out, from)
	}
	sort.Ints(out)

	return out, nil
}

// OutEdges returns the outgoing edges of key in insertion order.
func (g *Graph[N, E]) OutEdges(key int) ([]*Edge[N, E], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}

	return n.OutEdges(), nil
}

// Degree returns the number of outgoing edges of key.
func (g *Graph[N, E]) Degree(key int) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[key]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}

	return len(n.out), nil
}

// InDegree returns the number of incoming edges of key.
func (g *Graph[N, E]) InDegree(key int) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[key]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}

	return len(g.in[key]), nil
}

// NodeCount returns the number of nodes. Complexity: O(1).
func (g *Graph[N, E]) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// EdgeCount returns the number of directed edges. Complexity: O(1).
func (g *Graph[N, E]) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges)
}

// Keys returns every node key sorted ascending.
func (g *Graph[N, E]) Keys() []int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]int, 0, len(g.nodes))
	var k int
	for k = range g.nodes {
		out = append(out, k)
	}
	sort.Ints(out)

	return out
}

// Nodes returns every node sorted by Key. Pointers are live.
// Complexity: O(V log V).
func (g *Graph[N, E]) Nodes() []*Node[N, E] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Node[N, E], 0, len(g.nodes))
	var n *Node[N, E]
	for _, n = range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

// Edges returns every edge sorted by (From, To). Pointers are live.
// Complexity: O(E log E).
func (g *Graph[N, E]) Edges() []*Edge[N, E] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Edge[N, E], 0, len(g.edges))
	var e *Edge[N, E]
	for _, e = range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})

	return out
}
