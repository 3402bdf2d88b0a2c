// SPDX-License-Identifier: MIT
package algorithm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Fs0ociety/CityScover-sub000/stageflow"
)

type GreedySuite struct {
	suite.Suite
}

func TestGreedySuite(t *testing.T) { suite.Run(t, new(GreedySuite)) }

func (s *GreedySuite) run(alg stageflow.AlgorithmType, n int, budget time.Duration) (*Algorithm, *syncRuntime) {
	rt := newSyncRuntime(s.T(), lineCity(s.T(), n, 0), budget)
	a, err := New(stageflow.New(alg, nil), rt)
	s.Require().NoError(err)
	s.Require().NoError(a.Start(context.Background()))
	s.Equal(StatusTerminated, a.Status())

	return a, rt
}

func (s *GreedySuite) TestConstructiveCoversCityWithinGenerousBudget() {
	for _, alg := range []stageflow.AlgorithmType{
		stageflow.NearestNeighbor,
		stageflow.NearestNeighborKnapsack,
		stageflow.CheapestInsertion,
	} {
		s.Run(alg.String(), func() {
			a, rt := s.run(alg, 5, 12*time.Hour)
			best := a.Best()
			s.Require().NotNil(best)
			s.True(best.Valid())
			s.Equal(5, best.Tour.PointCount())
			s.NoError(best.Tour.ValidateCycle(1))
			s.InDelta(150.0, best.Cost(), 1e-9)
			s.Same(best, rt.BestSolution())
		})
	}
}

func (s *GreedySuite) TestNearestNeighborFollowsTheLine() {
	a, _ := s.run(stageflow.NearestNeighbor, 5, 12*time.Hour)
	seq, err := a.Best().Tour.Sequence(1)
	s.Require().NoError(err)
	s.Equal([]int{1, 2, 3, 4, 5}, seq)
}

func (s *GreedySuite) TestTightBudgetDropsFarPoints() {
	// 1 → 2 → 3 → 1 walks 4000 m, which is exactly the budget at 1 m/s.
	a, rt := s.run(stageflow.NearestNeighbor, 5, 4000*time.Second)
	best := a.Best()
	s.Require().NotNil(best)
	s.True(best.Valid())
	s.Equal([]int{1, 2, 3}, best.Tour.PointIDs())
	s.InDelta(60.0, best.Cost(), 1e-9)

	invalid := 0
	for _, c := range rt.submitted {
		if !c.Valid() {
			invalid++
		}
	}
	s.Equal(2, invalid)
}

func (s *GreedySuite) TestCheapestInsertionRespectsBudget() {
	a, _ := s.run(stageflow.CheapestInsertion, 5, 4000*time.Second)
	best := a.Best()
	s.Require().NotNil(best)
	s.True(best.Valid())
	s.LessOrEqual(best.TourTime, 9*time.Hour+4000*time.Second)
	s.Less(best.Tour.PointCount(), 5)
}

func (s *GreedySuite) TestUnknownStartPointFailsInitialization() {
	rt := newSyncRuntime(s.T(), lineCity(s.T(), 3, 0), time.Hour)
	rt.prob.Settings.StartPoint = 99
	a, err := New(stageflow.New(stageflow.NearestNeighbor, nil), rt)
	s.Require().NoError(err)
	s.ErrorIs(a.Start(context.Background()), ErrNoStartingSolution)
	s.Nil(rt.BestSolution())
}

func TestKnapsackPrefersScorePerSecond(t *testing.T) {
	rt := newSyncRuntime(t, lineCity(t, 3, 0), time.Hour)
	p := rt.prob
	two, err := rt.city.Point(2)
	require.NoError(t, err)
	three, err := rt.city.Point(3)
	require.NoError(t, err)

	// 20 points over 1000 s beats 30 points over 2000 s.
	assert.Greater(t, knapsack(p, two, 1000), knapsack(p, three, 2000))
	assert.Greater(t, nearest(p, two, 1000), nearest(p, three, 2000))
}

func TestDefaultPlanImprovesConstructedTour(t *testing.T) {
	rt := newSyncRuntime(t, lineCity(t, 6, 10*time.Minute), 12*time.Hour)
	a, err := New(stageflow.Default()[0], rt)
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))

	best := rt.BestSolution()
	require.NotNil(t, best)
	assert.True(t, best.Valid())
	assert.Equal(t, 6, best.Tour.PointCount())
	assert.InDelta(t, 210.0, best.Cost(), 1e-9)
	assert.Equal(t, StatusTerminated, a.Status())
}
