// SPDX-License-Identifier: MIT
// File: greedy.go
// Role: Constructive heuristics growing a tour from the starting point, one point
//       per step: nearest neighbor and its score-per-time knapsack variant.
// Determinism:
//   - Candidates are scanned in ascending id order; ties are broken with the
//     algorithm's own random stream.

package algorithm

import (
	"context"
	"fmt"
	"math"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/problem"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// greedy holds the state shared by constructive heuristics.
type greedy struct {
	*Algorithm
	base

	start         int
	working       *tour.Graph
	unprocessable map[int]bool
	exhausted     bool
}

func (g *greedy) initGreedy() error {
	city := g.rt.CityMap()
	g.start = g.rt.Problem().Settings.StartPoint
	g.working = tour.New()
	g.unprocessable = make(map[int]bool)
	g.exhausted = false
	if err := g.working.ImportPoint(city, g.start); err != nil {
		return fmt.Errorf("%w: %w", ErrNoStartingSolution, err)
	}

	return nil
}

// processable reports whether id may still join the tour.
func (g *greedy) processable(id int) bool {
	return id != g.start && !g.unprocessable[id] && !g.working.ContainsPoint(id)
}

func (g *greedy) stopConditions() bool {
	return g.failed() || g.exhausted || g.working.PointCount() == g.rt.CityMap().PointCount()
}

// finalize publishes the best tour and, when improvements are enabled, hands it to
// the child flows.
func (g *greedy) finalize(ctx context.Context) error {
	g.publish()
	if g.failed() || g.best == nil || len(g.flow.Children) == 0 {
		return nil
	}
	if !g.flow.Parameters.BoolOr(stageflow.CanDoImprovements, false) {
		return nil
	}
	if improved := g.runChildren(ctx, g.best); g.rt.Problem().Better(improved, g.best) {
		g.best = improved
	}

	return nil
}

func (g *greedy) release() { g.working = nil }

// routeMeters returns the distance of the city route from → to.
func routeMeters(city *tour.Graph, from, to int) (float64, bool) {
	w, err := city.Route(from, to)
	if err != nil {
		return 0, false
	}

	return w.Weight(), true
}

// attractiveness rates moving from → to over meters; higher is better.
type attractiveness func(p *problem.Problem, to *tour.PointWorker, meters float64) float64

// nearest prefers the shortest route.
func nearest(_ *problem.Problem, _ *tour.PointWorker, meters float64) float64 { return -meters }

// knapsack prefers the best score per second of walking.
func knapsack(p *problem.Problem, to *tour.PointWorker, meters float64) float64 {
	secs := tour.TravelTime(meters, p.Settings.WalkingSpeed).Seconds()
	if secs <= 0 {
		return math.Inf(1)
	}

	return float64(to.Entity.Score) / secs
}

// nearestNeighbor extends an open path from its last point to the most attractive
// processable neighbor, closing a copy back to the start for every candidate.
type nearestNeighbor struct {
	greedy
	rate attractiveness
	last int
}

func newNearestNeighbor(a *Algorithm, rate attractiveness) *nearestNeighbor {
	return &nearestNeighbor{greedy: greedy{Algorithm: a}, rate: rate}
}

func (n *nearestNeighbor) initialize(context.Context) error {
	if err := n.initGreedy(); err != nil {
		return err
	}
	n.last = n.start

	return nil
}

// selectNext returns the most attractive processable successor of the last point.
func (n *nearestNeighbor) selectNext() (int, bool, error) {
	city := n.rt.CityMap()
	succ, err := city.Successors(n.last)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrNoSuccessor, err)
	}
	var (
		ties []int
		best = math.Inf(-1)
	)
	for _, id := range succ {
		if !n.processable(id) {
			continue
		}
		meters, ok := routeMeters(city, n.last, id)
		if !ok {
			continue
		}
		w, err := city.Point(id)
		if err != nil {
			return 0, false, err
		}
		v := n.rate(n.rt.Problem(), w, meters)
		switch {
		case len(ties) == 0 || v > best+problem.Tolerance:
			best, ties = v, []int{id}
		case math.Abs(v-best) <= problem.Tolerance || (math.IsInf(v, 1) && math.IsInf(best, 1)):
			ties = append(ties, id)
		}
	}
	if len(ties) == 0 {
		return 0, false, nil
	}

	return pick(n.rng, ties), true, nil
}

func (n *nearestNeighbor) performStep(ctx context.Context) error {
	next, ok, err := n.selectNext()
	if err != nil {
		return err
	}
	if !ok {
		n.exhausted = true
		return nil
	}
	city := n.rt.CityMap()
	if err = n.working.ImportPoint(city, next); err != nil {
		return err
	}
	if err = n.working.ImportRoute(city, n.last, next); err != nil {
		return err
	}

	closed := n.working.DeepCopy()
	if err = closed.ImportRoute(city, next, n.start); err != nil {
		return n.reject(next)
	}
	c := solution.New(closed)
	if err = n.submit(ctx, c); err != nil {
		return err
	}
	if !c.Valid() {
		return n.reject(next)
	}
	n.last = next
	n.consider(c)
	ctxlog.FromContext(ctx).Debug("point attached", "point", next, "candidate", c.ID(), "cost", c.Cost())

	return nil
}

// reject removes id from the working path and excludes it from later steps.
func (n *nearestNeighbor) reject(id int) error {
	n.unprocessable[id] = true

	return n.working.RemovePoint(id)
}
