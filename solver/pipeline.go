// SPDX-License-Identifier: MIT
// File: pipeline.go
// Role: Candidate pipeline: intake → validator → evaluator.
// Contract:
//   - Enqueue registers the completion channel before the candidate enters the
//     queue; the evaluator (or releasePending) closes it exactly once.
//   - A candidate that fails validation is still evaluated when its tour is a
//     proper cycle; structural failures are recorded with Candidate.Fail and
//     skip evaluation.
//   - Await returns once every listed candidate is resolved, or ctx is done.

package solver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/metrics"
	"github.com/Fs0ociety/CityScover-sub000/progress"
	"github.com/Fs0ociety/CityScover-sub000/solution"
)

const defaultQueueSize = 64

// startPipeline wires the three stages into g and returns the intake queue.
func (s *Solver) startPipeline(ctx context.Context, g *errgroup.Group) chan *solution.Candidate {
	queue := make(chan *solution.Candidate, s.queueSize)
	toValidate := make(chan *solution.Candidate, s.queueSize)
	toEvaluate := make(chan *solution.Candidate, s.queueSize)
	s.queue.Store(&queue)

	g.Go(func() error {
		return stage(ctx, queue, toValidate, func(c *solution.Candidate) {
			metrics.Candidate(metrics.Enqueued)
			ctxlog.FromContext(ctx).Debug("candidate received", "candidate", c.ID())
		})
	})
	g.Go(func() error {
		return stage(ctx, toValidate, toEvaluate, s.validateCandidate)
	})
	g.Go(func() error {
		return stage(ctx, toEvaluate, nil, s.evaluateCandidate)
	})

	return queue
}

// stage applies fn to every candidate from in and forwards it to out, closing
// out once in is drained. A nil out ends the chain.
func stage(ctx context.Context, in <-chan *solution.Candidate, out chan<- *solution.Candidate, fn func(*solution.Candidate)) error {
	if out != nil {
		defer close(out)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-in:
			if !ok {
				return nil
			}
			fn(c)
			if out == nil {
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (s *Solver) validateCandidate(c *solution.Candidate) {
	if err := s.prob.Validate(c); err != nil {
		c.Fail(err)
	}
}

func (s *Solver) evaluateCandidate(c *solution.Candidate) {
	defer s.resolve(c.ID())

	if c.Err() == nil {
		if err := s.prob.Evaluate(c); err != nil {
			c.Fail(err)
		}
	}
	switch {
	case c.Err() != nil:
		metrics.Candidate(metrics.Failed)
		s.reporter.Messagef("candidate %d failed: %v", c.ID(), c.Err())
	case c.Valid():
		metrics.Candidate(metrics.Accepted)
		s.reporter.Publish(progress.SolutionAccepted{ID: c.ID(), Cost: c.Cost()})
	default:
		metrics.Candidate(metrics.Rejected)
		s.reporter.Publish(progress.SolutionRejected{
			ID:         c.ID(),
			Cost:       c.Cost(),
			Penalty:    c.Penalty(),
			Violations: c.Violations(),
		})
	}
}

// Enqueue hands c to the pipeline and yields so the pipeline can pick it up.
func (s *Solver) Enqueue(ctx context.Context, c *solution.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q := s.queue.Load()
	if q == nil {
		return ErrNotRunning
	}
	done := make(chan struct{})
	if _, loaded := s.pending.LoadOrStore(c.ID(), done); loaded {
		return fmt.Errorf("%w: %d", ErrDuplicateCandidate, c.ID())
	}

	select {
	case *q <- c:
	case <-ctx.Done():
		s.resolve(c.ID())
		return ctx.Err()
	}
	runtime.Gosched()

	return nil
}

// Await blocks until every candidate in cs has been validated and evaluated.
// Candidates that are not pending are already resolved.
func (s *Solver) Await(ctx context.Context, cs ...*solution.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range cs {
		v, ok := s.pending.Load(c.ID())
		if !ok {
			continue
		}
		select {
		case <-v.(chan struct{}):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// resolve closes and forgets the completion channel of id.
func (s *Solver) resolve(id int64) {
	if v, ok := s.pending.LoadAndDelete(id); ok {
		close(v.(chan struct{}))
	}
}

// releasePending resolves candidates left behind by a cancelled pipeline.
func (s *Solver) releasePending() {
	s.pending.Range(func(k, _ any) bool {
		s.resolve(k.(int64))
		return true
	})
}
