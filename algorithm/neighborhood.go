// SPDX-License-Identifier: MIT
// File: neighborhood.go
// Role: 2-opt neighborhood of a closed tour.
// Determinism:
//   - Edges are scanned along the tour from the starting point, so the same tour
//     always yields the same candidates in the same order.
// Complexity:
//   - O(n²) moves, each costing an O(n) deep copy.

package algorithm

import (
	"fmt"

	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// MoveFilter decides whether a move may be proposed; result is the tour the move
// produces. Returning false drops the candidate.
type MoveFilter func(m solution.Move, result *tour.Graph) bool

// twoOptNeighborhood returns one candidate per 2-opt exchange of cur.
//
// For every route (a,b) the walk from b back to a collects each route (c,d) sharing
// no endpoint with (a,b). The exchange removes both, reverses b … c and reconnects
// a → c and b → d with routes imported from city. Exchanges needing a route the city
// lacks are skipped. cur is never modified.
func twoOptNeighborhood(city, cur *tour.Graph, start int, filter MoveFilter) ([]*solution.Candidate, error) {
	if err := cur.ValidateCycle(start); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSuccessor, err)
	}
	seq, err := cur.Sequence(start)
	if err != nil {
		return nil, err
	}
	n := len(seq)
	if n < 4 {
		return nil, nil
	}

	seen := make(map[solution.Move]struct{}, n*n/2)
	var out []*solution.Candidate
	for i := 0; i < n; i++ {
		a, b := seq[i], seq[(i+1)%n]
		// Walk b → … → a, looking at every route (c,d) on the way.
		for j := (i + 1) % n; ; j = (j + 1) % n {
			c, d := seq[j], seq[(j+1)%n]
			if c == a {
				break
			}
			if c == b || d == a {
				continue
			}
			m := solution.NewMove(tour.RouteKey{From: a, To: b}, tour.RouteKey{From: c, To: d})
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}

			g, ok := exchange(city, cur, a, b, c, d)
			if !ok {
				continue
			}
			if filter != nil && !filter(m, g) {
				continue
			}
			cand := solution.New(g)
			mv := m
			cand.Move = &mv
			out = append(out, cand)
		}
	}

	return out, nil
}

// exchange applies the 2-opt move on a copy of cur: drop (a,b) and (c,d), reverse
// b … c, add a → c and b → d. It reports false when city lacks a needed route.
func exchange(city, cur *tour.Graph, a, b, c, d int) (*tour.Graph, bool) {
	if !city.ContainsRoute(a, c) || !city.ContainsRoute(b, d) {
		return nil, false
	}
	g := cur.DeepCopy()
	if g.RemoveRoute(a, b) != nil || g.RemoveRoute(c, d) != nil {
		return nil, false
	}
	if g.ReversePath(city, b, c) != nil {
		return nil, false
	}
	if g.ImportRoute(city, a, c) != nil || g.ImportRoute(city, b, d) != nil {
		return nil, false
	}

	return g, true
}
