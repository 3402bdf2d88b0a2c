// SPDX-License-Identifier: MIT
package solver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Fs0ociety/CityScover-sub000/algorithm"
	"github.com/Fs0ociety/CityScover-sub000/citymap"
	"github.com/Fs0ociety/CityScover-sub000/config"
	"github.com/Fs0ociety/CityScover-sub000/metrics"
	"github.com/Fs0ociety/CityScover-sub000/progress"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// lineCity places n points 1000 m apart on a line. Point i scores 10*i.
func lineCity(t *testing.T, n int, visit time.Duration) *tour.Graph {
	t.Helper()
	ps := make([]*tour.Point, 0, n)
	for id := 1; id <= n; id++ {
		ps = append(ps, &tour.Point{ID: id, Score: 10 * id, Longitude: float64(id-1) * 1000, VisitDuration: visit})
	}
	city, err := citymap.Complete(ps, citymap.WithMetric(citymap.Euclidean))
	require.NoError(t, err)

	return city
}

// cycle imports the closed tour ids[0] → ... → ids[0] from city.
func cycle(t *testing.T, city *tour.Graph, ids ...int) *tour.Graph {
	t.Helper()
	g := tour.New()
	for _, id := range ids {
		require.NoError(t, g.ImportPoint(city, id))
	}
	for i, id := range ids {
		require.NoError(t, g.ImportRoute(city, id, ids[(i+1)%len(ids)]))
	}

	return g
}

// recorder collects events from the pipeline goroutines.
type recorder struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recorder) Notify(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(match func(progress.Event) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if match(e) {
			n++
		}
	}
	return n
}

func (r *recorder) completed() []progress.Completed {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progress.Completed
	for _, e := range r.events {
		if c, ok := e.(progress.Completed); ok {
			out = append(out, c)
		}
	}
	return out
}

func isVerdict(e progress.Event) bool {
	switch e.(type) {
	case progress.SolutionAccepted, progress.SolutionRejected:
		return true
	}
	return false
}

type SolverSuite struct {
	suite.Suite
	city *tour.Graph
	cfg  *config.Configuration
}

func TestSolverSuite(t *testing.T) { suite.Run(t, new(SolverSuite)) }

func (s *SolverSuite) SetupTest() {
	s.city = lineCity(s.T(), 5, 0)
	s.cfg = config.Default()
	s.cfg.WalkingSpeed = 3.6
	s.cfg.Arrival = 9 * time.Hour
	s.cfg.TourDuration = 12 * time.Hour
	s.cfg.Stages = []*stageflow.Flow{stageflow.New(stageflow.NearestNeighbor, nil)}
}

func (s *SolverSuite) TestNewRejectsBadInput() {
	_, err := New(s.cfg, nil)
	s.ErrorIs(err, ErrNoCityMap)

	cfg := *s.cfg
	cfg.StartPoint = 42
	_, err = New(&cfg, s.city)
	s.ErrorIs(err, ErrUnknownStartPoint)

	cfg = *s.cfg
	cfg.WalkingSpeed = -1
	_, err = New(&cfg, s.city)
	s.ErrorIs(err, config.ErrInvalid)

	cfg = *s.cfg
	cfg.Stages = []*stageflow.Flow{stageflow.New(stageflow.TwoOpt, nil)}
	_, err = New(&cfg, s.city)
	s.ErrorIs(err, stageflow.ErrMissingParameter)
}

func (s *SolverSuite) TestNilConfigurationMeansDefault() {
	sv, err := New(nil, s.city)
	s.Require().NoError(err)
	s.Equal(config.Default().TourDuration, sv.Configuration().TourDuration)
	s.NotEqual(uuid.Nil, sv.ID())
}

func (s *SolverSuite) TestRunResolvesEveryCandidate() {
	rec := &recorder{}
	id := uuid.New()
	sv, err := New(s.cfg, s.city, WithObserver(rec), WithID(id), WithQueueSize(0))
	s.Require().NoError(err)
	s.Equal(id, sv.ID())

	enqueued := metrics.CandidateCount(metrics.Enqueued)
	resolved := metrics.CandidateCount(metrics.Accepted) + metrics.CandidateCount(metrics.Rejected) + metrics.CandidateCount(metrics.Failed)
	runs := metrics.StageRuns(stageflow.NearestNeighbor.String())

	best, err := sv.Run(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(best)
	s.True(best.Valid())
	s.Equal(150, best.Score())
	s.InDelta(150.0, best.Cost(), 1e-9)
	s.Same(best, sv.BestSolution())
	s.InDelta(150.0, metrics.BestCost(), 1e-9)

	in := metrics.CandidateCount(metrics.Enqueued) - enqueued
	out := metrics.CandidateCount(metrics.Accepted) + metrics.CandidateCount(metrics.Rejected) + metrics.CandidateCount(metrics.Failed) - resolved
	s.Positive(in)
	s.Equal(in, out)
	s.Equal(int(in), rec.count(isVerdict))
	s.Equal(runs+1, metrics.StageRuns(stageflow.NearestNeighbor.String()))

	done := rec.completed()
	s.Require().Len(done, 1)
	s.Equal(1, done[0].Stage)
	s.Equal("nearest_neighbor", done[0].Algorithm)

	pending := 0
	sv.pending.Range(func(any, any) bool { pending++; return true })
	s.Zero(pending)
}

func (s *SolverSuite) TestDefaultPlan() {
	s.city = lineCity(s.T(), 6, 10*time.Minute)
	s.cfg.Stages = nil
	sv, err := New(s.cfg, s.city)
	s.Require().NoError(err)

	best, err := sv.Run(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(best)
	s.InDelta(210.0, best.Cost(), 1e-9)
	s.Equal(6, best.Tour.PointCount())
}

func (s *SolverSuite) TestFailedStageDoesNotStopRun() {
	rec := &recorder{}
	s.cfg.Stages = []*stageflow.Flow{
		stageflow.New(stageflow.TwoOpt, stageflow.NewParameters().Set(stageflow.MaxIterations, stageflow.Int(3))),
		stageflow.New(stageflow.NearestNeighbor, nil),
	}
	sv, err := New(s.cfg, s.city)
	s.Require().NoError(err)
	unsubscribe := sv.Subscribe(rec)
	defer unsubscribe()

	best, err := sv.Run(context.Background())
	s.ErrorIs(err, algorithm.ErrNoStartingSolution)
	s.Require().NotNil(best)
	s.Equal(150, best.Score())
	s.Len(rec.completed(), 2)
	s.Positive(rec.count(func(e progress.Event) bool { _, ok := e.(progress.Message); return ok }))
}

func (s *SolverSuite) TestCancelledRun() {
	sv, err := New(s.cfg, s.city)
	s.Require().NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	best, err := sv.Run(ctx)
	s.ErrorIs(err, context.Canceled)
	s.Nil(best)
}

func (s *SolverSuite) TestRunIsExclusive() {
	sv, err := New(s.cfg, s.city)
	s.Require().NoError(err)
	sv.running.Store(true)
	_, err = sv.Run(context.Background())
	s.ErrorIs(err, ErrAlreadyRunning)
}

func (s *SolverSuite) TestEnqueueAndAwait() {
	sv, err := New(s.cfg, s.city)
	s.Require().NoError(err)
	c := solution.New(cycle(s.T(), s.city, 1, 2))
	ctx := context.Background()

	s.ErrorIs(sv.Enqueue(ctx, c), ErrNotRunning)
	s.NoError(sv.Await(ctx, c), "unknown candidates are resolved")

	q := make(chan *solution.Candidate, 2)
	sv.queue.Store(&q)
	s.Require().NoError(sv.Enqueue(ctx, c))
	s.ErrorIs(sv.Enqueue(ctx, c), ErrDuplicateCandidate)

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	s.ErrorIs(sv.Await(short, c), context.DeadlineExceeded)

	sv.evaluateCandidate(<-q)
	s.NoError(sv.Await(ctx, c))
	s.True(c.Evaluated())
	// The validator stage was skipped, so no constraint verdicts were recorded.
	s.Empty(c.Violations())
}

func (s *SolverSuite) TestPublishBest() {
	sv, err := New(s.cfg, s.city)
	s.Require().NoError(err)

	assess := func(ids ...int) *solution.Candidate {
		c := solution.New(cycle(s.T(), s.city, ids...))
		s.Require().NoError(sv.Problem().Validate(c))
		s.Require().NoError(sv.Problem().Evaluate(c))
		return c
	}

	s.False(sv.PublishBest(nil))
	s.False(sv.PublishBest(solution.New(cycle(s.T(), s.city, 1, 2))), "not evaluated")

	small := assess(1, 2)
	large := assess(1, 2, 3)
	s.True(sv.PublishBest(small))
	s.True(sv.PublishBest(large))
	s.False(sv.PublishBest(small))
	s.Same(large, sv.BestSolution())

	s.cfg.TourDuration = time.Minute
	tight, err := New(s.cfg, s.city)
	s.Require().NoError(err)
	c := solution.New(cycle(s.T(), s.city, 1, 2))
	s.Require().NoError(tight.Problem().Validate(c))
	s.Require().NoError(tight.Problem().Evaluate(c))
	s.False(c.Valid())
	s.False(tight.PublishBest(c), "invalid candidates never become best")
}

func (s *SolverSuite) TestRandStreamsDiffer() {
	sv, err := New(s.cfg, s.city)
	s.Require().NoError(err)
	a, b := sv.Rand().Int63(), sv.Rand().Int63()
	s.NotEqual(a, b)

	again, err := New(s.cfg, s.city)
	s.Require().NoError(err)
	s.Equal(a, again.Rand().Int63())
}
