// SPDX-License-Identifier: MIT
// Package core defines the central Graph, Node and Edge types and provides
// thread-safe primitives for building, querying and cloning graphs.
//
// All core APIs use one sync.RWMutex: queries take the read lock, mutations the
// write lock. Methods never call each other while holding the lock.
//
// This file declares Node, Edge, Graph, WeightFunc, sentinel errors and the
// NewGraph constructor.
package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrNodeExists indicates AddNode was called with a key already present.
	ErrNodeExists = errors.New("core: node already exists")

	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("core: node not found")

	// ErrEdgeExists indicates the directed edge (from, to) is already present.
	ErrEdgeExists = errors.New("core: edge already exists")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrLoopNotAllowed indicates a self-loop was attempted.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")
)

// WeightFunc returns the weight of an edge on demand. It lets the weight be
// derived from the edge payload instead of being stored on the edge.
type WeightFunc func() float64

// Node is a graph vertex: a unique key, an opaque payload and the ordered
// list of its outgoing edges (insertion order).
type Node[N, E any] struct {
	// Key uniquely identifies the node within its Graph.
	Key int

	// Payload is the caller's data. The graph never inspects it.
	Payload N

	out []*Edge[N, E]
}

// Edge is a directed connection From → To carrying a payload, an optional
// weight function and a visited flag used by traversals.
type Edge[N, E any] struct {
	// From is the source node key.
	From int

	// To is the destination node key.
	To int

	// Payload is the caller's data attached to the edge.
	Payload E

	// Visited is scratch state for traversals; the graph itself never reads it.
	Visited bool

	weight WeightFunc
}

// edgeKey identifies a directed edge by its endpoints.
type edgeKey struct{ from, to int }

// Graph is the core in-memory directed graph.
//
// nodes holds the node catalog, edges the (from,to) → edge index, and in the
// reverse adjacency (to → set of from) used by Predecessors and RemoveNode.
type Graph[N, E any] struct {
	mu sync.RWMutex // guards every field below

	nodes map[int]*Node[N, E]
	edges map[edgeKey]*Edge[N, E]
	in    map[int]map[int]struct{}
}

// NewGraph creates an empty Graph.
// Complexity: O(1).
func NewGraph[N, E any]() *Graph[N, E] {
	return &Graph[N, E]{
		nodes: make(map[int]*Node[N, E]),
		edges: make(map[edgeKey]*Edge[N, E]),
		in:    make(map[int]map[int]struct{}),
	}
}

// Weight evaluates the edge weight. ok is false when the edge is unweighted.
func (e *Edge[N, E]) Weight() (w float64, ok bool) {
	if e.weight == nil {
		return 0, false
	}

	return e.weight(), true
}

// Weighted reports whether the edge carries a weight function.
func (e *Edge[N, E]) Weighted() bool { return e.weight != nil }

// Degree returns the number of outgoing edges of the node.
func (n *Node[N, E]) Degree() int { return len(n.out) }

// OutEdges returns a copy of the node's outgoing edges in insertion order.
func (n *Node[N, E]) OutEdges() []*Edge[N, E] {
	out := make([]*Edge[N, E], len(n.out))
	copy(out, n.out)

	return out
}
