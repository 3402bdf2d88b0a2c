// SPDX-License-Identifier: MIT
// File: graph.go
// Role: Graph of point and route workers: construction, import from a template,
//       removal, lookups, deep copy and aggregate queries.
// Concurrency:
//   - Structural operations inherit core.Graph locking. Worker fields (Visited,
//     Arrival, Departure) are not synchronized: a tour is owned by one goroutine
//     at a time, and the city map template is never mutated after construction.

package tour

import (
	"fmt"

	"github.com/Fs0ociety/CityScover-sub000/core"
)

// Graph is a directed graph whose nodes are points of interest and whose edges are
// walking routes.
type Graph struct {
	g *core.Graph[*PointWorker, *RouteWorker]
}

// New returns an empty tour graph.
func New() *Graph {
	return &Graph{g: core.NewGraph[*PointWorker, *RouteWorker]()}
}

func routeWeight(w *RouteWorker) core.WeightFunc {
	return func() float64 { return w.Weight() }
}

// AddPoint inserts p wrapped in a fresh worker.
func (t *Graph) AddPoint(p *Point) error {
	return t.g.AddNode(p.ID, NewPointWorker(p))
}

// AddRoute inserts r as a directed, weighted edge r.From → r.To.
func (t *Graph) AddRoute(r *Route) error {
	w := NewRouteWorker(r)

	return t.g.AddWeightedEdge(r.From, r.To, w, routeWeight(w))
}

// ImportPoint copies the point id from template into t with fresh per-tour state.
//
// Errors:
//   - ErrPointNotInTemplate: template lacks id.
//   - core.ErrNodeExists: t already holds id.
func (t *Graph) ImportPoint(template *Graph, id int) error {
	w, err := template.Point(id)
	if err != nil {
		return fmt.Errorf("%w: %d", ErrPointNotInTemplate, id)
	}

	return t.g.AddNode(id, NewPointWorker(w.Entity.Clone()))
}

// ImportRoute copies the route from → to from template into t. Both endpoints must
// already be present in t.
//
// Errors:
//   - ErrRouteNotInTemplate: template lacks the route.
//   - core.ErrNodeNotFound, core.ErrEdgeExists: t cannot accept the route.
func (t *Graph) ImportRoute(template *Graph, from, to int) error {
	w, err := template.Route(from, to)
	if err != nil {
		return fmt.Errorf("%w: %d→%d", ErrRouteNotInTemplate, from, to)
	}
	e := *w.Entity

	return t.AddRoute(&e)
}

// RemovePoint deletes the point and every route touching it.
func (t *Graph) RemovePoint(id int) error { return t.g.RemoveNode(id) }

// RemoveRoute deletes the route from → to.
func (t *Graph) RemoveRoute(from, to int) error { return t.g.RemoveEdge(from, to) }

// ContainsPoint reports whether id is part of the graph.
func (t *Graph) ContainsPoint(id int) bool { return t.g.ContainsNode(id) }

// ContainsRoute reports whether the route from → to exists.
func (t *Graph) ContainsRoute(from, to int) bool { return t.g.ContainsEdge(from, to) }

// Point returns the worker of point id.
func (t *Graph) Point(id int) (*PointWorker, error) {
	n, err := t.g.Node(id)
	if err != nil {
		return nil, err
	}

	return n.Payload, nil
}

// Route returns the worker of route from → to.
func (t *Graph) Route(from, to int) (*RouteWorker, error) {
	e, err := t.g.Edge(from, to)
	if err != nil {
		return nil, err
	}

	return e.Payload, nil
}

// PointIDs returns every point id sorted ascending.
func (t *Graph) PointIDs() []int { return t.g.Keys() }

// Points returns every point worker ordered by id.
func (t *Graph) Points() []*PointWorker {
	nodes := t.g.Nodes()
	out := make([]*PointWorker, len(nodes))
	for i, n := range nodes {
		out[i] = n.Payload
	}

	return out
}

// Routes returns every route worker ordered by (From, To).
func (t *Graph) Routes() []*RouteWorker {
	edges := t.g.Edges()
	out := make([]*RouteWorker, len(edges))
	for i, e := range edges {
		out[i] = e.Payload
	}

	return out
}

// PointCount returns the number of points.
func (t *Graph) PointCount() int { return t.g.NodeCount() }

// RouteCount returns the number of directed routes.
func (t *Graph) RouteCount() int { return t.g.EdgeCount() }

// Successors returns the ids reachable from id through one route, sorted ascending.
func (t *Graph) Successors(id int) ([]int, error) { return t.g.Successors(id) }

// Predecessors returns the ids with a route into id, sorted ascending.
func (t *Graph) Predecessors(id int) ([]int, error) { return t.g.Predecessors(id) }

// AdjacentIDs returns the ids connected to id in either direction, sorted and
// without duplicates.
func (t *Graph) AdjacentIDs(id int) ([]int, error) {
	succ, err := t.g.Successors(id)
	if err != nil {
		return nil, err
	}
	pred, err := t.g.Predecessors(id)
	if err != nil {
		return nil, err
	}
	// Both inputs are sorted; merge them.
	out := make([]int, 0, len(succ)+len(pred))
	i, j := 0, 0
	for i < len(succ) || j < len(pred) {
		var v int
		switch {
		case j >= len(pred) || (i < len(succ) && succ[i] < pred[j]):
			v = succ[i]
			i++
		case i >= len(succ) || pred[j] < succ[i]:
			v = pred[j]
			j++
		default:
			v = succ[i]
			i++
			j++
		}
		out = append(out, v)
	}

	return out, nil
}

// DeepCopy returns an independent graph with the same topology. Every worker and
// every entity is cloned.
func (t *Graph) DeepCopy() *Graph {
	return &Graph{g: t.g.Clone(
		func(w *PointWorker) *PointWorker { return w.Clone() },
		func(w *RouteWorker) (*RouteWorker, core.WeightFunc) {
			c := w.Clone()
			return c, routeWeight(c)
		},
	)}
}

// TotalScore sums the score of every point.
func (t *Graph) TotalScore() int {
	total := 0
	for _, w := range t.Points() {
		total += w.Entity.Score
	}

	return total
}

// TotalDistance sums the distance of every route, in meters.
func (t *Graph) TotalDistance() float64 {
	total := 0.0
	for _, e := range t.g.Edges() {
		if w, ok := e.Weight(); ok {
			total += w
		}
	}

	return total
}

// String renders the graph as "points=N routes=M".
func (t *Graph) String() string {
	return fmt.Sprintf("points=%d routes=%d", t.PointCount(), t.RouteCount())
}
