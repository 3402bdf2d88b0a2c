// SPDX-License-Identifier: MIT
// File: two_opt.go
// Role: 2-opt local search. Each step scores the whole neighborhood of the current
//       tour and moves to its best candidate.
// Stop rules:
//   - Error or MaxIterations.
//   - More than ImprovementThreshold steps in a row without improving the best
//     tour. Child flows run at that point; the search stops unless they improve.
//   - Under AcceptImprovementsOnly without child flows, the first step that does
//     not improve, since the current tour can no longer change.

package algorithm

import (
	"context"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
)

type twoOpt struct {
	*Algorithm
	base

	maxIterations int
	threshold     int

	current  *solution.Candidate
	lastMove *solution.Move
	filter   MoveFilter

	iteration          int
	withoutImprovement int
	stalled            bool
}

func newTwoOpt(a *Algorithm) (*twoOpt, error) {
	maxIter, err := a.flow.Parameters.Int(stageflow.MaxIterations)
	if err != nil {
		return nil, err
	}

	return &twoOpt{
		Algorithm:     a,
		maxIterations: maxIter,
		threshold:     a.flow.Parameters.IntOr(stageflow.ImprovementThreshold, 0),
	}, nil
}

// setMoveFilter installs the filter consulted by the neighborhood generator.
func (t *twoOpt) setMoveFilter(f MoveFilter) { t.filter = f }

// reset clears per-run state so the same instance can be started again from c.
func (t *twoOpt) reset(c *solution.Candidate) {
	t.setStatus(StatusCreated)
	t.err = nil
	t.best = nil
	t.starting = c
	t.current = nil
	t.lastMove = nil
	t.iteration, t.withoutImprovement = 0, 0
	t.stalled = false
}

func (t *twoOpt) initialize(context.Context) error {
	start, err := t.startingSolution()
	if err != nil {
		return err
	}
	t.current = start
	t.consider(start)

	return nil
}

func (t *twoOpt) performStep(ctx context.Context) error {
	t.iteration++
	p := t.rt.Problem()
	neighbors, err := twoOptNeighborhood(t.rt.CityMap(), t.current.Tour, p.Settings.StartPoint, t.filter)
	if err != nil {
		return err
	}
	if len(neighbors) == 0 {
		t.stalled = true
		return nil
	}
	if err = t.submit(ctx, neighbors...); err != nil {
		return err
	}

	bestNeighbor := neighbors[0]
	for _, c := range neighbors[1:] {
		if p.CompareSolutionsCost(c.Cost(), bestNeighbor.Cost(), false) {
			bestNeighbor = c
		}
	}
	if !t.acceptImprovementsOnly || p.Better(bestNeighbor, t.current) {
		t.current = bestNeighbor
		t.lastMove = bestNeighbor.Move
	}

	improved := t.consider(t.current)
	if improved {
		t.withoutImprovement = 0
	} else {
		t.withoutImprovement++
	}
	hasChildren := len(t.flow.Children) > 0
	patient := t.withoutImprovement <= t.threshold
	if t.acceptImprovementsOnly && !hasChildren {
		// The current tour only moves on improvement, so nothing is left to try.
		patient = false
	}
	if !improved && !patient && hasChildren {
		if res := t.runChildren(ctx, t.current); p.Better(res, t.current) {
			t.current = res
			improved = t.consider(res)
			t.withoutImprovement = 0
		}
	}
	t.stalled = !improved && !patient

	ctxlog.FromContext(ctx).Debug("2-opt step",
		"iteration", t.iteration, "neighbors", len(neighbors), "current", t.current.ID(), "cost", t.current.Cost())

	return nil
}

func (t *twoOpt) stopConditions() bool {
	return t.failed() || t.stalled || t.iteration >= t.maxIterations
}

func (t *twoOpt) finalize(context.Context) error {
	t.publish()
	return nil
}
