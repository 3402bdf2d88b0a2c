// File: methods_edges.go
// Role: Node and edge lifecycle: AddNode/RemoveNode, AddEdge and its weighted and
//       undirected variants, RemoveEdge, membership and lookup.
// Determinism:
//   - Outgoing edges keep insertion order; RemoveEdge preserves the order of the rest.
// Concurrency:
//   - Mutations under the write lock, lookups under the read lock.

package core

import "fmt"

// AddNode inserts a node with the given key and payload.
//
// Errors:
//   - ErrNodeExists: the key is already present; the graph is unchanged.
//
// Complexity: O(1) amortized.
func (g *Graph[N, E]) AddNode(key int, payload N) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[key]; ok {
		return fmt.Errorf("%w: %d", ErrNodeExists, key)
	}
	g.nodes[key] = &Node[N, E]{Key: key, Payload: payload}

	return nil
}

// RemoveNode deletes the node and every edge incident to it.
//
// Complexity: O(deg(v) + indeg(v)·deg(u)) where u ranges over predecessors.
func (g *Graph[N, E]) RemoveNode(key int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[key]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}
	// Outgoing edges: drop index and reverse adjacency of each target.
	var e *Edge[N, E]
	for _, e = range n.out {
		delete(g.edges, edgeKey{e.From, e.To})
		delete(g.in[e.To], e.From)
	}
	// Incoming edges: unlink from each predecessor's ordered list.
	var from int
	for from = range g.in[key] {
		g.unlinkLocked(from, key)
	}
	delete(g.in, key)
	delete(g.nodes, key)

	return nil
}

// ContainsNode reports whether key is present.
// Complexity: O(1).
func (g *Graph[N, E]) ContainsNode(key int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.nodes[key]

	return ok
}

// Node returns the node stored under key.
// The returned pointer is live; callers must not mutate its edge list.
func (g *Graph[N, E]) Node(key int) (*Node[N, E], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}

	return n, nil
}

// AddEdge inserts the unweighted directed edge from → to.
//
// Errors:
//   - ErrLoopNotAllowed: from == to.
//   - ErrNodeNotFound: either endpoint is missing.
//   - ErrEdgeExists: the directed edge is already present.
func (g *Graph[N, E]) AddEdge(from, to int, payload E) error {
	return g.AddWeightedEdge(from, to, payload, nil)
}

// AddWeightedEdge inserts the directed edge from → to with a lazily evaluated weight.
// A nil weight produces an unweighted edge.
//
// Complexity: O(1) amortized.
func (g *Graph[N, E]) AddWeightedEdge(from, to int, payload E, weight WeightFunc) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkEdgeLocked(from, to); err != nil {
		return err
	}
	g.linkLocked(from, to, payload, weight)

	return nil
}

// AddUndirectedEdge inserts u → v and v → u sharing the same payload.
// Both directions are validated before anything is written, so the operation is
// all-or-nothing.
func (g *Graph[N, E]) AddUndirectedEdge(u, v int, payload E) error {
	return g.AddUndirectedWeightedEdge(u, v, payload, nil)
}

// AddUndirectedWeightedEdge is AddUndirectedEdge with a weight function shared by both directions.
func (g *Graph[N, E]) AddUndirectedWeightedEdge(u, v int, payload E, weight WeightFunc) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkEdgeLocked(u, v); err != nil {
		return err
	}
	if err := g.checkEdgeLocked(v, u); err != nil {
		return err
	}
	g.linkLocked(u, v, payload, weight)
	g.linkLocked(v, u, payload, weight)

	return nil
}

// RemoveEdge deletes the directed edge from → to.
//
// Errors:
//   - ErrEdgeNotFound: the edge is absent.
//
// Complexity: O(deg(from)) to keep the outgoing list ordered.
func (g *Graph[N, E]) RemoveEdge(from, to int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[edgeKey{from, to}]; !ok {
		return fmt.Errorf("%w: %d→%d", ErrEdgeNotFound, from, to)
	}
	g.unlinkLocked(from, to)
	delete(g.in[to], from)

	return nil
}

// ContainsEdge reports whether the directed edge from → to exists.
// Complexity: O(1).
func (g *Graph[N, E]) ContainsEdge(from, to int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.edges[edgeKey{from, to}]

	return ok
}

// Edge returns the directed edge from → to.
func (g *Graph[N, E]) Edge(from, to int) (*Edge[N, E], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.edges[edgeKey{from, to}]
	if !ok {
		return nil, fmt.Errorf("%w: %d→%d", ErrEdgeNotFound, from, to)
	}

	return e, nil
}

// checkEdgeLocked validates a prospective directed edge. Caller holds g.mu.
func (g *Graph[N, E]) checkEdgeLocked(from, to int) error {
	if from == to {
		return fmt.Errorf("%w: %d", ErrLoopNotAllowed, from)
	}
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: source %d", ErrNodeNotFound, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: destination %d", ErrNodeNotFound, to)
	}
	if _, ok := g.edges[edgeKey{from, to}]; ok {
		return fmt.Errorf("%w: %d→%d", ErrEdgeExists, from, to)
	}

	return nil
}

// linkLocked stores a validated edge. Caller holds g.mu.
func (g *Graph[N, E]) linkLocked(from, to int, payload E, weight WeightFunc) *Edge[N, E] {
	e := &Edge[N, E]{From: from, To: to, Payload: payload, weight: weight}
	g.edges[edgeKey{from, to}] = e
	src := g.nodes[from]
	src.out = append(src.out, e)
	if g.in[to] == nil {
		g.in[to] = make(map[int]struct{})
	}
	g.in[to][from] = struct{}{}

	return e
}

// unlinkLocked removes from → to from the index and from's ordered list.
// The reverse adjacency is left to the caller. Caller holds g.mu.
func (g *Graph[N, E]) unlinkLocked(from, to int) {
	delete(g.edges, edgeKey{from, to})
	src, ok := g.nodes[from]
	if !ok {
		return
	}
	var (
		i int
		e *Edge[N, E]
	)
	for i, e = range src.out {
		if e.To == to {
			src.out = append(src.out[:i], src.out[i+1:]...)
			return
		}
	}
}
