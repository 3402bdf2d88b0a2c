// SPDX-License-Identifier: MIT
// File: algorithm.go
// Role: The lifecycle driver shared by every strategy, plus the helpers strategies
//       use to submit candidates, track their best and chain into child flows.

package algorithm

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
)

// Algorithm runs one stage flow through the lifecycle
// Initializing → Running → Terminating → Terminated, with Error reachable from any step.
type Algorithm struct {
	flow *stageflow.Flow
	rt   Runtime
	rng  *rand.Rand
	impl hooks

	status atomic.Int32
	err    error

	acceptImprovementsOnly bool

	// starting seeds improvement algorithms; nil means the runtime's best solution.
	starting *solution.Candidate
	best     *solution.Candidate
}

// Type returns the algorithm type of the flow being run.
func (a *Algorithm) Type() stageflow.AlgorithmType { return a.flow.Algorithm }

// Flow returns the stage flow being run.
func (a *Algorithm) Flow() *stageflow.Flow { return a.flow }

// Status returns the current lifecycle state. It is safe to call concurrently.
func (a *Algorithm) Status() Status { return Status(a.status.Load()) }

func (a *Algorithm) setStatus(s Status) { a.status.Store(int32(s)) }

// Err returns the first error the run met.
func (a *Algorithm) Err() error { return a.err }

// Best returns the best valid candidate seen by this run, or nil.
func (a *Algorithm) Best() *solution.Candidate { return a.best }

// AcceptImprovementsOnly reports whether non-improving steps are refused.
func (a *Algorithm) AcceptImprovementsOnly() bool { return a.acceptImprovementsOnly }

// SetAcceptImprovementsOnly toggles acceptance of non-improving steps.
func (a *Algorithm) SetAcceptImprovementsOnly(v bool) { a.acceptImprovementsOnly = v }

// SetStartingSolution seeds the run with c.
func (a *Algorithm) SetStartingSolution(c *solution.Candidate) { a.starting = c }

// Start drives the lifecycle to completion and returns the first error met.
// finalize runs even after an error so the best-so-far candidate is published.
func (a *Algorithm) Start(ctx context.Context) error {
	ctx = ctxlog.With(ctx, "algorithm", a.Type().String())
	log := ctxlog.FromContext(ctx)

	a.setStatus(StatusInitializing)
	if err := a.impl.initialize(ctx); err != nil {
		a.fail(ctx, fmt.Errorf("initialize: %w", err))
	} else {
		a.setStatus(StatusRunning)
		for !a.impl.stopConditions() {
			if err := a.impl.performStep(ctx); err != nil {
				a.fail(ctx, err)
			}
		}
	}

	if !a.failed() {
		a.setStatus(StatusTerminating)
	}
	if err := a.impl.finalize(ctx); err != nil {
		a.fail(ctx, fmt.Errorf("finalize: %w", err))
	}
	if !a.failed() {
		a.setStatus(StatusTerminated)
	}
	a.impl.release()

	if a.best != nil {
		log.Debug("algorithm finished", "status", a.Status(), "best", a.best.ID(), "cost", a.best.Cost())
	}

	return a.err
}

func (a *Algorithm) failed() bool { return a.Status() == StatusError }

// fail records err, switches to Error, reports it and runs the error hook.
func (a *Algorithm) fail(ctx context.Context, err error) {
	if a.err == nil {
		a.err = err
	}
	a.setStatus(StatusError)
	a.rt.Reporter().Messagef("%s failed: %v", a.Type(), err)
	ctxlog.FromContext(ctx).Error("algorithm step failed", "error", err)
	a.impl.onError(err)
}

// startingSolution returns the explicit seed or the runtime's best.
func (a *Algorithm) startingSolution() (*solution.Candidate, error) {
	c := a.starting
	if c == nil {
		c = a.rt.BestSolution()
	}
	if c == nil || c.Tour == nil {
		return nil, ErrNoStartingSolution
	}

	return c, nil
}

// submit enqueues every candidate, then waits for all of them.
func (a *Algorithm) submit(ctx context.Context, cs ...*solution.Candidate) error {
	for _, c := range cs {
		if err := a.rt.Enqueue(ctx, c); err != nil {
			return err
		}
	}

	return a.rt.Await(ctx, cs...)
}

// consider keeps c as the run's best when it is valid and strictly better.
func (a *Algorithm) consider(c *solution.Candidate) bool {
	if c == nil || !c.Valid() || !c.Evaluated() {
		return false
	}
	if a.rt.Problem().Better(c, a.best) {
		a.best = c
		return true
	}

	return false
}

// publish offers the run's best to the runtime.
func (a *Algorithm) publish() {
	if a.best != nil {
		a.rt.PublishBest(a.best)
	}
}

// runChildren runs every child flow RunningCount times, each seeded with the best
// candidate found so far, and returns that best. A failing child fails the parent.
func (a *Algorithm) runChildren(ctx context.Context, seed *solution.Candidate) *solution.Candidate {
	current := seed
	for _, f := range a.flow.Children {
		for i := 0; i < f.RunningCount; i++ {
			child, err := New(f, a.rt)
			if err != nil {
				a.fail(ctx, err)
				return current
			}
			child.SetStartingSolution(current)
			if err = child.Start(ctx); err != nil {
				a.fail(ctx, fmt.Errorf("child %s: %w", f.Algorithm, err))
			}
			if a.rt.Problem().Better(child.Best(), current) {
				current = child.Best()
			}
			if a.failed() {
				return current
			}
		}
	}

	return current
}

// base provides no-op hooks for strategies that do not need them.
type base struct{}

func (base) onError(error) {}
func (base) release()      {}
