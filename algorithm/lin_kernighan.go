// SPDX-License-Identifier: MIT
// File: lin_kernighan.go
// Role: Variable-depth search. Each step opens the tour at its closing route, relinks
//       the end through an unused point x, reverses the walk so one directed path
//       remains and closes it again. Steps chain on the previous step's tour; the
//       best tour seen across the whole run is kept.

package algorithm

import (
	"context"
	"fmt"
	"sort"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

type linKernighan struct {
	*Algorithm
	base

	maxSteps  int
	steps     int
	working   *tour.Graph
	used      map[int]bool
	exhausted bool
}

func newLinKernighan(a *Algorithm) (*linKernighan, error) {
	steps, err := a.flow.Parameters.Int(stageflow.LKMaxSteps)
	if err != nil {
		return nil, err
	}

	return &linKernighan{Algorithm: a, maxSteps: steps}, nil
}

func (lk *linKernighan) initialize(context.Context) error {
	start, err := lk.startingSolution()
	if err != nil {
		return err
	}
	lk.consider(start)
	lk.working = start.Tour.DeepCopy()
	lk.used = make(map[int]bool)
	lk.steps = 0
	lk.exhausted = false

	return nil
}

// successorCandidates lists the points x for which relinking end → x is a proper
// exchange, by descending score then ascending id, skipping used ones.
func (lk *linKernighan) successorCandidates(start, end, beforeEnd int) []*tour.PointWorker {
	var out []*tour.PointWorker
	for _, w := range lk.working.Points() {
		id := w.ID()
		if id == start || id == end || id == beforeEnd || lk.used[id] {
			continue
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entity.Score > out[j].Entity.Score })

	return out
}

func (lk *linKernighan) performStep(ctx context.Context) error {
	lk.steps++
	city := lk.rt.CityMap()
	start := lk.rt.Problem().Settings.StartPoint

	end, err := lk.working.Prev(start)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoSuccessor, err)
	}
	beforeEnd, err := lk.working.Prev(end)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoSuccessor, err)
	}

	for _, x := range lk.successorCandidates(start, end, beforeEnd) {
		lk.used[x.ID()] = true
		succ, err := lk.working.Next(x.ID())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNoSuccessor, err)
		}
		// Open at end → start, relink end through x: a 2-opt on (x,succ) and (end,start).
		g, ok := exchange(city, lk.working, x.ID(), succ, end, start)
		if !ok {
			continue
		}
		c := solution.New(g)
		m := solution.NewMove(tour.RouteKey{From: x.ID(), To: succ}, tour.RouteKey{From: end, To: start})
		c.Move = &m
		if err = lk.submit(ctx, c); err != nil {
			return err
		}
		lk.working = g
		lk.consider(c)
		ctxlog.FromContext(ctx).Debug("lin-kernighan step", "step", lk.steps, "through", x.ID(), "cost", c.Cost())
		return nil
	}
	lk.exhausted = true

	return nil
}

func (lk *linKernighan) stopConditions() bool {
	return lk.failed() || lk.exhausted || lk.steps >= lk.maxSteps
}

func (lk *linKernighan) finalize(context.Context) error {
	lk.publish()
	return nil
}

func (lk *linKernighan) release() {
	lk.working = nil
	lk.used = nil
}
