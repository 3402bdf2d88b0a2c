// SPDX-License-Identifier: MIT
// File: traverse.go
// Role: Breadth-first traversal over a tour graph with per-point and per-route
//       hooks, and arrival/departure propagation built on top of it.
// Determinism:
//   - Outgoing routes are explored in insertion order.

package tour

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStartNotFound is returned when Traverse starts from an absent point.
var ErrStartNotFound = errors.New("tour: traversal start not found")

// PointHook is invoked when a point is dequeued. Returning an error aborts the walk.
type PointHook func(p *PointWorker, depth int) error

// RouteHook is invoked for every outgoing route of a dequeued point. discovered is
// true when the route leads to a point not seen before.
type RouteHook func(r *RouteWorker, from, to *PointWorker, discovered bool) error

// TraverseOption configures Traverse.
type TraverseOption func(*traverseOptions)

type traverseOptions struct {
	ctx     context.Context
	onPoint PointHook
	onRoute RouteHook
}

func defaultTraverseOptions() traverseOptions {
	return traverseOptions{
		ctx:     context.Background(),
		onPoint: func(*PointWorker, int) error { return nil },
		onRoute: func(*RouteWorker, *PointWorker, *PointWorker, bool) error { return nil },
	}
}

// WithContext sets a context checked once per dequeued point.
func WithContext(ctx context.Context) TraverseOption {
	return func(o *traverseOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithOnPoint registers the point hook.
func WithOnPoint(fn PointHook) TraverseOption {
	return func(o *traverseOptions) {
		if fn != nil {
			o.onPoint = fn
		}
	}
}

// WithOnRoute registers the route hook.
func WithOnRoute(fn RouteHook) TraverseOption {
	return func(o *traverseOptions) {
		if fn != nil {
			o.onRoute = fn
		}
	}
}

// Walk is the outcome of a traversal.
type Walk struct {
	// Order lists point ids in visit order.
	Order []int
	// Parent maps each reached point, except the start, to the point it was discovered from.
	Parent map[int]int
}

// PathTo reconstructs the discovery path from the start to dest.
func (w *Walk) PathTo(dest int) ([]int, error) {
	found := false
	for _, id := range w.Order {
		if id == dest {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("tour: no path to %d", dest)
	}
	path := []int{dest}
	for cur := dest; ; {
		prev, ok := w.Parent[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}

type walkItem struct {
	id    int
	depth int
}

// walker holds the mutable state of one traversal.
type walker struct {
	t     *Graph
	opts  traverseOptions
	queue []walkItem
	res   *Walk
}

// Traverse runs a breadth-first walk from start. Visited flags of every point and
// route are reset first, then set on everything the walk reaches.
func (t *Graph) Traverse(start int, opts ...TraverseOption) (*Walk, error) {
	o := defaultTraverseOptions()
	for _, opt := range opts {
		opt(&o)
	}
	first, err := t.Point(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrStartNotFound, start)
	}

	t.resetVisited()
	n := t.g.NodeCount()
	w := &walker{
		t:     t,
		opts:  o,
		queue: make([]walkItem, 0, n),
		res:   &Walk{Order: make([]int, 0, n), Parent: make(map[int]int, n)},
	}
	first.Visited = true
	w.queue = append(w.queue, walkItem{id: start})

	return w.res, w.loop()
}

func (t *Graph) resetVisited() {
	t.g.ResetVisited()
	for _, n := range t.g.Nodes() {
		n.Payload.Visited = false
	}
	for _, e := range t.g.Edges() {
		e.Payload.Visited = false
	}
}

func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.opts.ctx.Done():
			return w.opts.ctx.Err()
		default:
		}
		item := w.queue[0]
		w.queue = w.queue[1:]

		node, err := w.t.g.Node(item.id)
		if err != nil {
			return err
		}
		w.res.Order = append(w.res.Order, item.id)
		if err = w.opts.onPoint(node.Payload, item.depth); err != nil {
			return fmt.Errorf("tour: point hook at %d: %w", item.id, err)
		}
		for _, e := range node.OutEdges() {
			to, err := w.t.g.Node(e.To)
			if err != nil {
				return err
			}
			discovered := !to.Payload.Visited
			e.Visited = true
			e.Payload.Visited = true
			if err = w.opts.onRoute(e.Payload, node.Payload, to.Payload, discovered); err != nil {
				return fmt.Errorf("tour: route hook at %d→%d: %w", e.From, e.To, err)
			}
			if discovered {
				to.Payload.Visited = true
				w.res.Parent[e.To] = item.id
				w.queue = append(w.queue, walkItem{id: e.To, depth: item.depth + 1})
			}
		}
	}

	return nil
}

// UpdateTimes recomputes arrival and departure of every point reachable from start.
// The start point is reached at arrival; each discovered point is reached at the
// departure of its predecessor plus the walking time of the route at speedKmh.
// Departure is arrival plus visit duration.
//
// The returned completion time is the moment the closing route re-enters start, or
// the latest departure when the tour is an open path.
func (t *Graph) UpdateTimes(start int, arrival time.Duration, speedKmh float64) (time.Duration, error) {
	if speedKmh <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSpeed, speedKmh)
	}
	var (
		completion time.Duration
		closed     bool
	)
	_, err := t.Traverse(start,
		WithOnPoint(func(p *PointWorker, depth int) error {
			if depth == 0 {
				p.Arrival = arrival
				p.Departure = arrival + p.Entity.VisitDuration
			}
			if !closed && p.Departure > completion {
				completion = p.Departure
			}
			return nil
		}),
		WithOnRoute(func(r *RouteWorker, from, to *PointWorker, discovered bool) error {
			reach := from.Departure + TravelTime(r.Weight(), speedKmh)
			switch {
			case to.ID() == start:
				completion, closed = reach, true
			case discovered:
				to.Arrival = reach
				to.Departure = reach + to.Entity.VisitDuration
			}
			return nil
		}),
	)
	if err != nil {
		return 0, err
	}

	return completion, nil
}
