// SPDX-License-Identifier: MIT
package algorithm

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Fs0ociety/CityScover-sub000/problem"
	"github.com/Fs0ociety/CityScover-sub000/progress"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// syncRuntime validates and evaluates candidates inline, so tests see the same
// results the pipeline would produce without running its goroutines.
type syncRuntime struct {
	city      *tour.Graph
	prob      *problem.Problem
	reporter  *progress.Reporter
	best      *solution.Candidate
	streams   uint64
	submitted []*solution.Candidate
	messages  []string
}

func newSyncRuntime(t *testing.T, city *tour.Graph, budget time.Duration) *syncRuntime {
	t.Helper()
	p, err := problem.New(problem.TeamOrienteering, problem.Settings{
		StartPoint:   1,
		Arrival:      9 * time.Hour,
		TourDuration: budget,
		WalkingSpeed: 3.6,
	})
	require.NoError(t, err)
	rt := &syncRuntime{city: city, prob: p, reporter: progress.NewReporter()}
	rt.reporter.Subscribe(progress.ObserverFunc(func(e progress.Event) {
		if m, ok := e.(progress.Message); ok {
			rt.messages = append(rt.messages, m.Text)
		}
	}))

	return rt
}

func (r *syncRuntime) CityMap() *tour.Graph { return r.city }
func (r *syncRuntime) Problem() *problem.Problem { return r.prob }
func (r *syncRuntime) BestSolution() *solution.Candidate { return r.best }
func (r *syncRuntime) Reporter() *progress.Reporter { return r.reporter }
func (r *syncRuntime) Await(ctx context.Context, _ ...*solution.Candidate) error { return ctx.Err() }

func (r *syncRuntime) Rand() *rand.Rand {
	r.streams++
	return NewRand(7, r.streams)
}

func (r *syncRuntime) PublishBest(c *solution.Candidate) bool {
	if c == nil || !c.Valid() || !r.prob.Better(c, r.best) {
		return false
	}
	r.best = c

	return true
}

func (r *syncRuntime) Enqueue(ctx context.Context, c *solution.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.submitted = append(r.submitted, c)
	if err := r.prob.Validate(c); err != nil {
		c.Fail(err)
		return nil
	}
	if err := r.prob.Evaluate(c); err != nil {
		c.Fail(err)
	}

	return nil
}

// evaluated validates and evaluates a tour outside any algorithm.
func (r *syncRuntime) evaluated(t *testing.T, g *tour.Graph) *solution.Candidate {
	t.Helper()
	c := solution.New(g)
	require.NoError(t, r.prob.Validate(c))
	require.NoError(t, r.prob.Evaluate(c))

	return c
}

// lineCity returns n points on a line, 1000 m apart, fully connected in both
// directions. Point i scores 10*i and is visited for visit.
func lineCity(t *testing.T, n int, visit time.Duration) *tour.Graph {
	t.Helper()
	city := tour.New()
	for id := 1; id <= n; id++ {
		require.NoError(t, city.AddPoint(&tour.Point{ID: id, Score: 10 * id, VisitDuration: visit}))
	}
	rid := 0
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			if i == j {
				continue
			}
			rid++
			d := i - j
			if d < 0 {
				d = -d
			}
			require.NoError(t, city.AddRoute(&tour.Route{ID: rid, From: i, To: j, Distance: float64(1000 * d)}))
		}
	}

	return city
}

// cycle imports ids from city in order and closes the tour.
func cycle(t *testing.T, city *tour.Graph, ids ...int) *tour.Graph {
	t.Helper()
	g := tour.New()
	for _, id := range ids {
		require.NoError(t, g.ImportPoint(city, id))
	}
	if len(ids) == 1 {
		return g
	}
	for i := range ids {
		require.NoError(t, g.ImportRoute(city, ids[i], ids[(i+1)%len(ids)]))
	}

	return g
}
