// SPDX-License-Identifier: MIT
package algorithm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// triangle is three points 1000 m apart pairwise with no visit time, scored 0, 10
// and 50.
func triangle(t *testing.T) *tour.Graph {
	t.Helper()
	city := tour.New()
	for id, score := range map[int]int{1: 0, 2: 10, 3: 50} {
		require.NoError(t, city.AddPoint(&tour.Point{ID: id, Score: score}))
	}
	rid := 0
	for i := 1; i <= 3; i++ {
		for j := 1; j <= 3; j++ {
			if i != j {
				rid++
				require.NoError(t, city.AddRoute(&tour.Route{ID: rid, From: i, To: j, Distance: 1000}))
			}
		}
	}

	return city
}

func TestHybridInsertionFillsTour(t *testing.T) {
	rt := newSyncRuntime(t, lineCity(t, 5, 0), 12*time.Hour)
	start := rt.evaluated(t, cycle(t, rt.city, 1, 2))

	a, err := New(stageflow.New(stageflow.HybridInsertion,
		stageflow.NewParameters().Set(stageflow.HybridMaxRestarts, stageflow.Int(2))), rt)
	require.NoError(t, err)
	a.SetStartingSolution(start)
	require.NoError(t, a.Start(context.Background()))

	best := a.Best()
	require.NotNil(t, best)
	assert.True(t, best.Valid())
	assert.Equal(t, 5, best.Tour.PointCount())
	assert.NoError(t, best.Tour.ValidateCycle(1))
	assert.InDelta(t, 150.0, best.Cost(), 1e-9)
	assert.Equal(t, 1, a.impl.(*hybrid).restarts)
}

func TestHybridInsertionUndoesInvalidMoves(t *testing.T) {
	// 1 → 2 → 1 takes 2000 s; any third point pushes past 2500 s.
	rt := newSyncRuntime(t, triangle(t), 2500*time.Second)
	start := rt.evaluated(t, cycle(t, rt.city, 1, 2))

	a, err := New(stageflow.New(stageflow.HybridInsertion,
		stageflow.NewParameters().Set(stageflow.HybridMaxRestarts, stageflow.Int(2))), rt)
	require.NoError(t, err)
	a.SetStartingSolution(start)
	require.NoError(t, a.Start(context.Background()))

	assert.Same(t, start, a.Best())
	require.Len(t, rt.submitted, 1)
	assert.False(t, rt.submitted[0].Valid())
	assert.Equal(t, []string{"Tmax"}, rt.submitted[0].Violations())
}

func TestHybridUpdateReplacesLowScorePoint(t *testing.T) {
	rt := newSyncRuntime(t, triangle(t), 2500*time.Second)
	start := rt.evaluated(t, cycle(t, rt.city, 1, 2))
	require.True(t, start.Valid())

	a, err := New(stageflow.New(stageflow.HybridUpdate, stageflow.NewParameters().
		Set(stageflow.HybridMaxRestarts, stageflow.Int(1)).
		Set(stageflow.HybridTimeWalkThreshold, stageflow.Duration(30*time.Minute))), rt)
	require.NoError(t, err)
	a.SetStartingSolution(start)
	require.NoError(t, a.Start(context.Background()))

	best := a.Best()
	require.NotNil(t, best)
	assert.Equal(t, []int{1, 3}, best.Tour.PointIDs())
	assert.InDelta(t, 50.0, best.Cost(), 1e-9)
	assert.Same(t, best, rt.BestSolution())
	assert.Equal(t, StatusTerminated, a.Status())
}

func TestHybridUpdateThresholdBlocksFarPoints(t *testing.T) {
	rt := newSyncRuntime(t, triangle(t), 2500*time.Second)
	start := rt.evaluated(t, cycle(t, rt.city, 1, 2))

	// 1000 m at 3.6 km/h is 1000 s, which is not under the threshold.
	a, err := New(stageflow.New(stageflow.HybridUpdate, stageflow.NewParameters().
		Set(stageflow.HybridMaxRestarts, stageflow.Int(1)).
		Set(stageflow.HybridTimeWalkThreshold, stageflow.Duration(1000*time.Second))), rt)
	require.NoError(t, err)
	a.SetStartingSolution(start)
	require.NoError(t, a.Start(context.Background()))

	assert.Same(t, start, a.Best())
	assert.Empty(t, rt.submitted)
}

func TestTenure(t *testing.T) {
	assert.Equal(t, 4, tenureFor(7, 2))
	assert.Equal(t, 3, tenureFor(6, 2))
	assert.Equal(t, 1, tenureFor(1, 5))
	assert.Equal(t, 1, tenureFor(0, 3))
	assert.Equal(t, 5, tenureFor(5, 0))
}

func TestTabuListExpiry(t *testing.T) {
	m1 := solution.NewMove(tour.RouteKey{From: 1, To: 2}, tour.RouteKey{From: 3, To: 4})
	m2 := solution.NewMove(tour.RouteKey{From: 2, To: 3}, tour.RouteKey{From: 4, To: 5})
	l := tabuList{tenure: 2}

	l.age()
	l.lock(m1)
	l.expire()
	assert.True(t, l.locked(m1))

	l.age()
	l.lock(m2)
	l.expire()
	assert.True(t, l.locked(m1))
	assert.True(t, l.locked(m2))
	assert.Equal(t, 2, l.len())

	l.age()
	l.expire()
	assert.False(t, l.locked(m1))
	assert.True(t, l.locked(m2))

	// Locking is direction-agnostic.
	assert.True(t, l.locked(solution.NewMove(tour.RouteKey{From: 5, To: 4}, tour.RouteKey{From: 3, To: 2})))
}

func TestTabuAspiration(t *testing.T) {
	rt := newSyncRuntime(t, lineCity(t, 6, 0), 12*time.Hour)
	cur := cycle(t, rt.city, 1, 2, 3, 4, 5, 6)
	all, err := twoOptNeighborhood(rt.city, cur, 1, nil)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	tb := &tabu{Algorithm: &Algorithm{rt: rt}, list: tabuList{tenure: 3}}
	tb.list.lock(*all[0].Move)

	out, err := twoOptNeighborhood(rt.city, cur, 1, tb.allow)
	require.NoError(t, err)
	assert.Len(t, out, len(all)-1)

	// Same cost as the best-ever is not enough.
	tb.best = rt.evaluated(t, cur)
	out, err = twoOptNeighborhood(rt.city, cur, 1, tb.allow)
	require.NoError(t, err)
	assert.Len(t, out, len(all)-1)

	// A locked move beating the best-ever passes.
	tb.best = solution.New(cur)
	require.NoError(t, tb.best.Evaluate(0, -1e9, 0))
	out, err = twoOptNeighborhood(rt.city, cur, 1, tb.allow)
	require.NoError(t, err)
	assert.Len(t, out, len(all))
}

func TestTabuSearchUncrossesTour(t *testing.T) {
	rt := newSyncRuntime(t, lineCity(t, 5, 10*time.Minute), crossingBudget)
	start := rt.evaluated(t, cycle(t, rt.city, 1, 3, 2, 4, 5))

	inner := stageflow.New(stageflow.TwoOpt, stageflow.NewParameters().
		Set(stageflow.MaxIterations, stageflow.Int(3)).
		Set(stageflow.ImprovementThreshold, stageflow.Int(1)))
	a, err := New(stageflow.New(stageflow.TabuSearch, stageflow.NewParameters().
		Set(stageflow.MaxIterations, stageflow.Int(5)).
		Set(stageflow.TabuTenureFactor, stageflow.Int(2)).
		Set(stageflow.TabuMaxDeadlockIterations, stageflow.Int(2)), inner), rt)
	require.NoError(t, err)
	a.SetStartingSolution(start)
	require.NoError(t, a.Start(context.Background()))

	best := a.Best()
	require.NotNil(t, best)
	assert.True(t, best.Valid())
	assert.InDelta(t, 8000.0, best.Tour.TotalDistance(), 1e-9)
	assert.Same(t, best, rt.BestSolution())
	assert.Equal(t, StatusTerminated, a.Status())

	tb := a.impl.(*tabu)
	// The first iteration finds the best tour; two more without a new best end the run.
	assert.Equal(t, 3, tb.iteration)
	assert.Equal(t, 2, tb.deadlock)
	assert.Equal(t, 3, tb.list.tenure)
}

func TestTabuSearchNeverRevisitsLockedMoves(t *testing.T) {
	rt := newSyncRuntime(t, lineCity(t, 6, 0), 12*time.Hour)
	start := rt.evaluated(t, cycle(t, rt.city, 1, 3, 5, 2, 4, 6))

	inner := stageflow.New(stageflow.TwoOpt, stageflow.NewParameters().
		Set(stageflow.MaxIterations, stageflow.Int(2)).
		Set(stageflow.ImprovementThreshold, stageflow.Int(1)))
	a, err := New(stageflow.New(stageflow.TabuSearch, stageflow.NewParameters().
		Set(stageflow.MaxIterations, stageflow.Int(8)).
		Set(stageflow.TabuTenureFactor, stageflow.Int(3)).
		Set(stageflow.TabuMaxDeadlockIterations, stageflow.Int(4)), inner), rt)
	require.NoError(t, err)
	a.SetStartingSolution(start)

	// Drive the lifecycle by hand so every iteration's submissions can be checked
	// against the moves locked before it.
	ctx := context.Background()
	tb := a.impl.(*tabu)
	require.NoError(t, tb.initialize(ctx))
	tenure := tb.list.tenure
	require.Equal(t, 2, tenure)

	lockedAt := map[solution.Move]int{}
	live := 0
	for step := 1; !tb.stopConditions(); step++ {
		bestBefore := tb.best
		for _, j := range lockedAt {
			if step-j <= tenure {
				live++
			}
		}
		from := len(rt.submitted)
		require.NoError(t, tb.performStep(ctx))

		for _, c := range rt.submitted[from:] {
			require.NotNil(t, c.Move)
			j, ok := lockedAt[*c.Move]
			if !ok || step-j > tenure {
				continue
			}
			require.True(t, c.Evaluated())
			assert.True(t, rt.prob.CompareSolutionsCost(c.Cost(), bestBefore.Cost(), false),
				"step %d proposed %s locked at step %d without beating the best", step, c.Move, j)
		}
		if tb.search.lastMove != nil {
			lockedAt[*tb.search.lastMove] = step
		}
	}

	assert.NotEmpty(t, lockedAt)
	assert.Positive(t, live, "no iteration ran with a locked move")
	assert.GreaterOrEqual(t, tb.iteration, 2)
}

func TestTabuRejectsForeignInnerAlgorithm(t *testing.T) {
	rt := newSyncRuntime(t, lineCity(t, 4, 0), 12*time.Hour)
	f := stageflow.New(stageflow.TabuSearch, stageflow.NewParameters().
		Set(stageflow.MaxIterations, stageflow.Int(5)).
		Set(stageflow.TabuTenureFactor, stageflow.Int(2)).
		Set(stageflow.TabuMaxDeadlockIterations, stageflow.Int(2)),
		stageflow.New(stageflow.LinKernighan, stageflow.NewParameters().Set(stageflow.LKMaxSteps, stageflow.Int(2))))

	_, err := New(f, rt)
	assert.ErrorIs(t, err, stageflow.ErrInvalidFlow)
}
