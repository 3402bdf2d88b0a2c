// SPDX-License-Identifier: MIT
// Package solver runs configured stage flows against one city map.
//
// A Solver owns the configuration, the read-only city graph, the problem built
// from the configuration and the best candidate found so far. Run starts the
// candidate pipeline (intake → validator → evaluator) in the background and then
// executes each top-level stage flow in order on the calling goroutine.
//
// Concurrency:
//   - Exactly one algorithm runs at a time; it shares the Solver with the three
//     pipeline goroutines.
//   - Every enqueued candidate owns a completion channel closed exactly once by
//     the pipeline, so Await never depends on queue order.
//   - BestSolution, PublishBest and Subscribe are safe for concurrent use.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Fs0ociety/CityScover-sub000/algorithm"
	"github.com/Fs0ociety/CityScover-sub000/config"
	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/metrics"
	"github.com/Fs0ociety/CityScover-sub000/problem"
	"github.com/Fs0ociety/CityScover-sub000/progress"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// Sentinel errors.
var (
	// ErrNoCityMap is returned by New without a city graph.
	ErrNoCityMap = errors.New("solver: no city map")

	// ErrUnknownStartPoint is returned when the configured start point is not in the city.
	ErrUnknownStartPoint = errors.New("solver: start point not in city map")

	// ErrAlreadyRunning is returned by Run while another Run is in progress.
	ErrAlreadyRunning = errors.New("solver: already running")

	// ErrNotRunning is returned by Enqueue outside Run.
	ErrNotRunning = errors.New("solver: pipeline not running")

	// ErrDuplicateCandidate is returned when a candidate is enqueued twice while pending.
	ErrDuplicateCandidate = errors.New("solver: candidate already pending")
)

// Solver orchestrates one optimization run. Build it with New.
type Solver struct {
	id       uuid.UUID
	cfg      *config.Configuration
	city     *tour.Graph
	prob     *problem.Problem
	reporter *progress.Reporter

	queueSize int

	mu   sync.Mutex
	best *solution.Candidate

	running atomic.Bool
	queue   atomic.Pointer[chan *solution.Candidate]
	pending sync.Map // candidate id → chan struct{}
	streams atomic.Uint64
}

// New validates cfg and builds the problem it describes on city. A nil cfg means
// config.Default. city is treated as read-only from here on.
func New(cfg *config.Configuration, city *tour.Graph, opts ...Option) (*Solver, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if city == nil {
		return nil, ErrNoCityMap
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	family, err := cfg.Family()
	if err != nil {
		return nil, err
	}
	prob, err := problem.New(family, cfg.Settings())
	if err != nil {
		return nil, err
	}
	if !city.ContainsPoint(cfg.StartPoint) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStartPoint, cfg.StartPoint)
	}

	s := &Solver{
		id:        uuid.New(),
		cfg:       cfg,
		city:      city,
		prob:      prob,
		reporter:  progress.NewReporter(),
		queueSize: defaultQueueSize,
	}
	for _, o := range opts {
		o(s)
	}

	return s, nil
}

// ID returns the run identifier used in logs.
func (s *Solver) ID() uuid.UUID { return s.id }

// Configuration returns the working configuration.
func (s *Solver) Configuration() *config.Configuration { return s.cfg }

// CityMap returns the read-only city graph.
func (s *Solver) CityMap() *tour.Graph { return s.city }

// Problem returns the problem built from the configuration.
func (s *Solver) Problem() *problem.Problem { return s.prob }

// Reporter returns the progress event subject.
func (s *Solver) Reporter() *progress.Reporter { return s.reporter }

// Subscribe registers o for progress events and returns the function removing it.
func (s *Solver) Subscribe(o progress.Observer) (unsubscribe func()) {
	return s.reporter.Subscribe(o)
}

// BestSolution returns the best candidate published so far, or nil.
func (s *Solver) BestSolution() *solution.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.best
}

// PublishBest stores c when it is a valid, evaluated candidate that beats the
// current best. It reports whether c was stored.
func (s *Solver) PublishBest(c *solution.Candidate) bool {
	if c == nil || !c.Evaluated() || !c.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prob.Better(c, s.best) {
		return false
	}
	s.best = c
	metrics.SetBestCost(c.Cost())

	return true
}

// Seed validates and evaluates t outside the pipeline and offers it as the best
// solution, so improvement stages can start from a tour found earlier. It
// returns the evaluated candidate whether or not it was published.
func (s *Solver) Seed(t *tour.Graph) (*solution.Candidate, error) {
	c := solution.New(t)
	if err := s.prob.Validate(c); err != nil {
		return nil, err
	}
	if err := s.prob.Evaluate(c); err != nil {
		return nil, err
	}
	s.PublishBest(c)

	return c, nil
}

// Rand returns a new random stream derived from the configured seed.
func (s *Solver) Rand() *rand.Rand {
	return algorithm.NewRand(s.cfg.Seed, s.streams.Add(1))
}

// Run executes every configured stage and returns the best candidate found.
//
// A stage whose algorithm cannot be built (a configuration error) aborts the
// run. A stage that fails while running is reported and the next stage starts
// from the best candidate published so far; such failures are joined into the
// returned error. Cancelling ctx stops the current algorithm and the pipeline.
func (s *Solver) Run(ctx context.Context) (*solution.Candidate, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	ctx = ctxlog.With(ctx, "run", s.id.String())
	log := ctxlog.FromContext(ctx)
	metrics.RunStarted()

	g, gctx := errgroup.WithContext(ctx)
	queue := s.startPipeline(gctx, g)

	var errs []error
	flows := s.cfg.Flows()
	log.Info("run started", "stages", len(flows), "points", s.city.PointCount())
	for i, f := range flows {
		fatal, err := s.runStage(gctx, i+1, f)
		if err != nil {
			if gctx.Err() != nil {
				break
			}
			errs = append(errs, err)
			if fatal {
				break
			}
		}
	}

	s.queue.Store(nil)
	close(queue)
	waitErr := g.Wait()
	s.releasePending()

	switch {
	case ctx.Err() != nil:
		errs = append(errs, ctx.Err())
	case waitErr != nil:
		errs = append(errs, waitErr)
	}

	best := s.BestSolution()
	if best != nil {
		log.Info("run finished", "best", best.ID(), "cost", best.Cost(), "score", best.Score())
	} else {
		log.Warn("run finished without a valid tour")
	}

	return best, errors.Join(errs...)
}

// runStage runs flow RunningCount times. fatal reports a configuration error.
func (s *Solver) runStage(ctx context.Context, stage int, flow *stageflow.Flow) (fatal bool, err error) {
	ctx = ctxlog.With(ctx, "stage", stage)
	log := ctxlog.FromContext(ctx)
	name := flow.Algorithm.String()
	began := time.Now()

	var errs []error
	for i := 0; i < flow.RunningCount; i++ {
		alg, err := algorithm.New(flow, s)
		if err != nil {
			s.reporter.Messagef("stage %d: %v", stage, err)
			return true, fmt.Errorf("stage %d: %w", stage, err)
		}
		log.Debug("stage run", "algorithm", name, "round", i+1)
		if err = alg.Start(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stage %d (%s): %w", stage, name, err))
			if ctx.Err() != nil {
				break
			}
		}
	}

	elapsed := time.Since(began)
	metrics.StageDone(name, elapsed)
	s.reporter.Publish(progress.Completed{Stage: stage, Algorithm: name, Elapsed: elapsed})

	return false, errors.Join(errs...)
}
