package solution_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

func TestIDsAreUniqueAcrossGoroutines(t *testing.T) {
	const workers, each = 8, 200
	ids := make(chan int64, workers*each)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				ids <- solution.New(tour.New()).ID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, workers*each)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}

func TestIDsIncrease(t *testing.T) {
	a := solution.New(tour.New())
	b := solution.New(tour.New())
	assert.Greater(t, b.ID(), a.ID())
}

func TestEvaluateOnce(t *testing.T) {
	c := solution.New(tour.New())
	require.NoError(t, c.Evaluate(40, 30, 10))
	require.ErrorIs(t, c.Evaluate(1, 1, 0), solution.ErrAlreadyEvaluated)
	assert.Equal(t, 30.0, c.Cost())
	assert.Equal(t, 40, c.Score())
	assert.Equal(t, 10.0, c.Penalty(), "a second Evaluate must not overwrite")
	assert.True(t, c.Evaluated())
}

func TestValidity(t *testing.T) {
	c := solution.New(tour.New())
	assert.True(t, c.Valid(), "no constraints recorded")

	c.SetValidity("TimeWindows", true)
	c.SetValidity("Tmax", false)
	assert.False(t, c.Valid())
	assert.Equal(t, []string{"Tmax"}, c.Violations())

	c.SetValidity("Tmax", true)
	assert.True(t, c.Valid())
	c.Fail(assert.AnError)
	assert.False(t, c.Valid())
	assert.ErrorIs(t, c.Err(), assert.AnError)
}

func TestMoveNormalization(t *testing.T) {
	a := solution.NewMove(tour.RouteKey{From: 5, To: 2}, tour.RouteKey{From: 1, To: 3})
	b := solution.NewMove(tour.RouteKey{From: 3, To: 1}, tour.RouteKey{From: 2, To: 5})
	assert.Equal(t, a, b)
	assert.Equal(t, tour.RouteKey{From: 1, To: 3}, a.First)
	assert.Equal(t, "{1-3, 2-5}", a.String())
}
