// SPDX-License-Identifier: MIT
// File: path.go
// Role: Path and cycle structure of a tour: start/end discovery, successor walks,
//       cycle validation and segment reversal.

package tour

import (
	"fmt"
)

// StartPoint returns the unique point with no incoming route, provided the
// routes from it reach every point as one open path.
//
// Errors:
//   - ErrEmptyTour: no points.
//   - ErrClosedTour: every point has an incoming route.
//   - ErrNotAPath: more than one point lacks an incoming route, or the path from
//     the start leaves points out.
func (t *Graph) StartPoint() (int, error) {
	return t.uniqueEndpoint(t.g.InDegree, t.g.Successors, "incoming")
}

// EndPoint returns the unique point with no outgoing route, provided walking back
// from it reaches every point. Errors mirror StartPoint.
func (t *Graph) EndPoint() (int, error) {
	return t.uniqueEndpoint(t.g.Degree, t.g.Predecessors, "outgoing")
}

func (t *Graph) uniqueEndpoint(degree func(int) (int, error), step func(int) ([]int, error), dir string) (int, error) {
	keys := t.g.Keys()
	if len(keys) == 0 {
		return 0, ErrEmptyTour
	}
	found, id := 0, 0
	for _, k := range keys {
		d, err := degree(k)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			found++
			id = k
		}
	}
	switch found {
	case 0:
		return 0, ErrClosedTour
	case 1:
	default:
		return 0, fmt.Errorf("%w: %d points without %s routes", ErrNotAPath, found, dir)
	}

	n, err := chainLength(id, step)
	if err != nil {
		return 0, err
	}
	if total := len(keys); n != total {
		return 0, fmt.Errorf("%w: path from %d covers %d of %d points", ErrNotAPath, id, n, total)
	}

	return id, nil
}

// chainLength follows step from id while it yields exactly one neighbor and
// returns the number of points visited.
func chainLength(id int, step func(int) ([]int, error)) (int, error) {
	seen := map[int]struct{}{id: {}}
	for cur := id; ; {
		next, err := step(cur)
		if err != nil {
			return 0, err
		}
		switch len(next) {
		case 0:
			return len(seen), nil
		case 1:
		default:
			return 0, fmt.Errorf("%w: %d branches to %d points", ErrNotAPath, cur, len(next))
		}
		cur = next[0]
		if _, ok := seen[cur]; ok {
			return 0, fmt.Errorf("%w: walk from %d loops at %d", ErrNotAPath, id, cur)
		}
		seen[cur] = struct{}{}
	}
}

// Next returns the unique successor of id.
//
// Errors:
//   - core.ErrNodeNotFound: id is absent.
//   - ErrNoSuccessor: id has zero or several outgoing routes.
func (t *Graph) Next(id int) (int, error) {
	succ, err := t.g.Successors(id)
	if err != nil {
		return 0, err
	}
	if len(succ) != 1 {
		return 0, fmt.Errorf("%w: %d has %d", ErrNoSuccessor, id, len(succ))
	}

	return succ[0], nil
}

// Prev returns the unique predecessor of id.
func (t *Graph) Prev(id int) (int, error) {
	pred, err := t.g.Predecessors(id)
	if err != nil {
		return 0, err
	}
	if len(pred) != 1 {
		return 0, fmt.Errorf("%w: %d has %d predecessors", ErrNotAPath, id, len(pred))
	}

	return pred[0], nil
}

// Sequence walks successors from start and returns the visited ids in order. The
// walk ends at a point without successors (open path) or when it returns to start
// (cycle); start is not repeated.
func (t *Graph) Sequence(start int) ([]int, error) {
	if !t.g.ContainsNode(start) {
		return nil, fmt.Errorf("%w: start %d", ErrNotAPath, start)
	}
	n := t.g.NodeCount()
	seq := make([]int, 0, n)
	seen := make(map[int]struct{}, n)
	cur := start
	for {
		seq = append(seq, cur)
		seen[cur] = struct{}{}
		succ, err := t.g.Successors(cur)
		if err != nil {
			return nil, err
		}
		switch len(succ) {
		case 0:
			return seq, nil
		case 1:
		default:
			return nil, fmt.Errorf("%w: %d has %d", ErrNoSuccessor, cur, len(succ))
		}
		cur = succ[0]
		if cur == start {
			return seq, nil
		}
		if _, ok := seen[cur]; ok {
			return nil, fmt.Errorf("%w: walk from %d loops at %d", ErrNotAPath, start, cur)
		}
	}
}

// ValidateCycle checks that the routes form exactly one cycle through every point,
// starting and ending at start. A single point without routes is a valid cycle.
//
// Complexity: O(V log V).
func (t *Graph) ValidateCycle(start int) error {
	n := t.g.NodeCount()
	if n == 0 {
		return ErrEmptyTour
	}
	if !t.g.ContainsNode(start) {
		return fmt.Errorf("%w: start %d not in tour", ErrNotACycle, start)
	}
	if n == 1 {
		if t.g.EdgeCount() != 0 {
			return fmt.Errorf("%w: lone point carries routes", ErrNotACycle)
		}
		return nil
	}
	if t.g.EdgeCount() != n {
		return fmt.Errorf("%w: %d routes for %d points", ErrNotACycle, t.g.EdgeCount(), n)
	}
	seq, err := t.Sequence(start)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotACycle, err)
	}
	if len(seq) != n {
		return fmt.Errorf("%w: walk covers %d of %d points", ErrNotACycle, len(seq), n)
	}
	if !t.g.ContainsEdge(seq[n-1], start) {
		return fmt.Errorf("%w: %d does not return to %d", ErrNotACycle, seq[n-1], start)
	}

	return nil
}

// ReversePath reverses every route on the successor walk from → … → to, replacing
// each u → v with v → u imported from template. The graph is left unchanged when
// the walk does not reach to or a reverse route is missing from template.
func (t *Graph) ReversePath(template *Graph, from, to int) error {
	var pairs [][2]int
	cur := from
	for cur != to {
		next, err := t.Next(cur)
		if err != nil {
			return err
		}
		if next == from {
			return fmt.Errorf("%w: %d not reachable from %d", ErrNotAPath, to, from)
		}
		pairs = append(pairs, [2]int{cur, next})
		cur = next
	}
	for _, p := range pairs {
		if !template.ContainsRoute(p[1], p[0]) {
			return fmt.Errorf("%w: %d→%d", ErrRouteNotInTemplate, p[1], p[0])
		}
	}
	for _, p := range pairs {
		if err := t.RemoveRoute(p[0], p[1]); err != nil {
			return err
		}
	}
	for _, p := range pairs {
		if err := t.ImportRoute(template, p[1], p[0]); err != nil {
			return err
		}
	}

	return nil
}
