// SPDX-License-Identifier: MIT
// File: closure.go
// Role: Shortest-walk closure of a street graph.
// Determinism:
//   - Sources are processed in ascending id order; routes get ids 1, 2, 3, ...
//     in (source, target) order.
// Complexity:
//   - Time: O(P·(P + R) log P), one Dijkstra run per point with lazy decrease-key.
//   - Space: O(P²) for the resulting routes.

package citymap

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// Closure returns a graph over the points of city in which a direct route from a
// to b exists whenever b is reachable from a, with the length of the shortest
// walk as its distance. Algorithms only follow direct routes, so a sparse street
// map must be closed before it is handed to a solver.
func Closure(city *tour.Graph) (*tour.Graph, error) {
	if city == nil || city.PointCount() == 0 {
		return nil, fmt.Errorf("%w: empty city", ErrTooFewPoints)
	}
	ws := city.Points()
	points := make([]*tour.Point, len(ws))
	for i, w := range ws {
		points[i] = w.Entity
	}
	out, err := addPoints(points)
	if err != nil {
		return nil, err
	}

	ids := city.PointIDs()
	sort.Ints(ids)
	rid := 0
	for _, src := range ids {
		dist, err := shortestFrom(city, src)
		if err != nil {
			return nil, err
		}
		for _, dst := range ids {
			d, ok := dist[dst]
			if dst == src || !ok {
				continue
			}
			rid++
			if err = out.AddRoute(&tour.Route{ID: rid, From: src, To: dst, Distance: d}); err != nil {
				return nil, fmt.Errorf("citymap: route %d→%d: %w", src, dst, err)
			}
		}
	}

	return out, nil
}

// shortestFrom runs Dijkstra from src over the route distances of city.
func shortestFrom(city *tour.Graph, src int) (map[int]float64, error) {
	dist := map[int]float64{src: 0}
	pq := &distQueue{{id: src}}
	for pq.Len() > 0 {
		it := heap.Pop(pq).(distItem)
		if it.d > dist[it.id] {
			continue // stale
		}
		succ, err := city.Successors(it.id)
		if err != nil {
			return nil, err
		}
		for _, v := range succ {
			r, err := city.Route(it.id, v)
			if err != nil {
				return nil, err
			}
			w := r.Weight()
			if w < 0 || math.IsNaN(w) {
				return nil, fmt.Errorf("%w: route %d has distance %v", ErrInvalidRoute, r.Entity.ID, w)
			}
			nd := it.d + w
			if old, seen := dist[v]; !seen || nd < old {
				dist[v] = nd
				heap.Push(pq, distItem{id: v, d: nd})
			}
		}
	}

	return dist, nil
}

type distItem struct {
	id int
	d  float64
}

// distQueue is a min-heap on distance, ties broken by id.
type distQueue []distItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].d != q[j].d {
		return q[i].d < q[j].d
	}
	return q[i].id < q[j].id
}
func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)   { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]

	return it
}
