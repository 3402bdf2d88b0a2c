// SPDX-License-Identifier: MIT
// File: tabu.go
// Role: Tabu search wrapped around an inner 2-opt run with AcceptImprovementsOnly
//       disabled. After every inner run the move it took is locked for
//       tenure = ceil(tourSize / TabuTenureFactor) iterations; the generator refuses
//       locked moves unless they beat the best-ever tour (aspiration).

package algorithm

import (
	"context"
	"fmt"
	"math"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// tabuMove is a locked exchange and the iterations elapsed since it was locked.
type tabuMove struct {
	move       solution.Move
	expiration int
}

// tabuList keeps locked moves in locking order.
type tabuList struct {
	moves  []tabuMove
	tenure int
}

// age counts one more iteration for every locked move.
func (l *tabuList) age() {
	for i := range l.moves {
		l.moves[i].expiration++
	}
}

// lock records m with a fresh expiration counter.
func (l *tabuList) lock(m solution.Move) {
	l.moves = append(l.moves, tabuMove{move: m})
}

// expire drops the moves whose expiration reached the tenure.
func (l *tabuList) expire() {
	kept := l.moves[:0]
	for _, tm := range l.moves {
		if tm.expiration < l.tenure {
			kept = append(kept, tm)
		}
	}
	l.moves = kept
}

func (l *tabuList) locked(m solution.Move) bool {
	for _, tm := range l.moves {
		if tm.move == m {
			return true
		}
	}

	return false
}

func (l *tabuList) len() int { return len(l.moves) }

type tabu struct {
	*Algorithm
	base

	maxIterations int
	maxDeadlock   int
	factor        int

	inner   *Algorithm
	search  *twoOpt
	list    tabuList
	current *solution.Candidate

	iteration int
	deadlock  int
}

func newTabu(a *Algorithm) (*tabu, error) {
	p := a.flow.Parameters
	maxIter, err := p.Int(stageflow.MaxIterations)
	if err != nil {
		return nil, err
	}
	factor, err := p.Int(stageflow.TabuTenureFactor)
	if err != nil {
		return nil, err
	}
	deadlock, err := p.Int(stageflow.TabuMaxDeadlockIterations)
	if err != nil {
		return nil, err
	}

	return &tabu{Algorithm: a, maxIterations: maxIter, factor: factor, maxDeadlock: deadlock}, nil
}

// tenureFor returns ceil(size / factor), at least 1.
func tenureFor(size, factor int) int {
	if factor < 1 {
		factor = 1
	}
	t := int(math.Ceil(float64(size) / float64(factor)))
	if t < 1 {
		t = 1
	}

	return t
}

func (t *tabu) initialize(context.Context) error {
	start, err := t.startingSolution()
	if err != nil {
		return err
	}
	t.current = start
	t.consider(start)

	inner, err := New(t.flow.Children[0], t.rt)
	if err != nil {
		return err
	}
	search, ok := inner.impl.(*twoOpt)
	if !ok {
		return fmt.Errorf("%w: tabu search wraps %s", ErrUnsupportedAlgorithm, inner.Type())
	}
	inner.SetAcceptImprovementsOnly(false)
	search.setMoveFilter(t.allow)
	t.inner, t.search = inner, search

	t.list = tabuList{tenure: tenureFor(start.Tour.PointCount(), t.factor)}
	t.iteration, t.deadlock = 0, 0

	return nil
}

// allow is the inner generator's move filter: unlocked moves pass, locked ones only
// when the tour they produce is strictly better than the best-ever tour.
func (t *tabu) allow(m solution.Move, result *tour.Graph) bool {
	if !t.list.locked(m) {
		return true
	}
	if t.best == nil {
		return false
	}
	cost, err := t.rt.Problem().Assess(result)
	if err != nil {
		return false
	}

	return t.rt.Problem().CompareSolutionsCost(cost, t.best.Cost(), false)
}

func (t *tabu) performStep(ctx context.Context) error {
	t.iteration++
	t.search.reset(t.current)
	if err := t.inner.Start(ctx); err != nil {
		return fmt.Errorf("tabu inner %s: %w", t.inner.Type(), err)
	}

	if t.consider(t.inner.Best()) {
		t.deadlock = 0
	} else {
		t.deadlock++
	}
	t.list.age()
	if t.search.lastMove != nil {
		t.list.lock(*t.search.lastMove)
	}
	t.list.expire()
	// The next iteration starts from the inner run's current tour, which may be
	// worse than the best-ever one.
	if t.search.current != nil {
		t.current = t.search.current
	}

	ctxlog.FromContext(ctx).Debug("tabu iteration",
		"iteration", t.iteration, "locked", t.list.len(), "deadlock", t.deadlock, "current", t.current.Cost())

	return nil
}

func (t *tabu) stopConditions() bool {
	return t.failed() || t.iteration >= t.maxIterations || t.deadlock >= t.maxDeadlock
}

func (t *tabu) finalize(context.Context) error {
	t.publish()
	return nil
}

func (t *tabu) release() {
	t.inner, t.search = nil, nil
	t.list.moves = nil
}
