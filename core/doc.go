// Package core provides a thread-safe, generic in-memory directed Graph keyed by
// integer node ids, with an opaque payload on every node and every edge.
//
// The Graph G = (V,E) has a deliberately small contract:
//
//   - Nodes are unique by key; AddNode on an existing key fails (ErrNodeExists).
//   - Edges are directed (From → To) and unique by (From, To); a second AddEdge on the
//     same ordered pair fails (ErrEdgeExists). Self-loops are rejected (ErrLoopNotAllowed).
//   - Both endpoints must already exist (ErrNodeNotFound); AddEdge never creates nodes.
//   - Undirected insertion is sugar over two directed insertions and is atomic:
//     both directions are inserted, or none is.
//   - A weight is an optional WeightFunc, evaluated lazily, so the weight can be derived
//     from the edge payload rather than stored.
//   - Degree is the count of outgoing edges; InDegree counts incoming ones.
//
// Core Methods:
//
//	// Node lifecycle
//	AddNode(key int, payload N) error                // O(1)
//	RemoveNode(key int) error                        // O(deg(v)+indeg(v))
//	ContainsNode(key int) bool                       // O(1)
//	Node(key int) (*Node[N,E], error)                // O(1)
//
//	// Edge lifecycle
//	AddEdge(from, to int, payload E) error                            // O(1)
//	AddWeightedEdge(from, to int, payload E, w WeightFunc) error      // O(1)
//	AddUndirectedEdge(u, v int, payload E) error                      // O(1)
//	AddUndirectedWeightedEdge(u, v int, payload E, w WeightFunc) error
//	RemoveEdge(from, to int) error                                    // O(deg(from))
//	ContainsEdge(from, to int) bool                                   // O(1)
//	Edge(from, to int) (*Edge[N,E], error)                            // O(1)
//
//	// Queries
//	Successors(key int) ([]int, error)    // sorted ascending
//	Predecessors(key int) ([]int, error)  // sorted ascending
//	Degree(key int) (int, error)          // outgoing edges
//	NodeCount(), EdgeCount() int
//	Nodes() []*Node[N,E], Edges() []*Edge[N,E]
//
//	// Cloning
//	Clone(copyNode, copyEdge) *Graph[N,E] // deep copy through caller-provided copiers
//
// Errors:
//
//	ErrNodeExists     – AddNode on an existing key
//	ErrNodeNotFound   – operation on a missing node
//	ErrEdgeExists     – duplicate (From, To)
//	ErrEdgeNotFound   – operation on a missing edge
//	ErrLoopNotAllowed – From == To
//
// The graph has no knowledge of the domain it is used for: the tour package layers
// points of interest and routes on top of it.
package core
