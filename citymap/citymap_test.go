// SPDX-License-Identifier: MIT
package citymap

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fs0ociety/CityScover-sub000/tour"
)

func points(n int) []*tour.Point {
	ps := make([]*tour.Point, 0, n)
	for i := n; i >= 1; i-- { // reversed on purpose
		ps = append(ps, &tour.Point{ID: i, Name: fmt.Sprintf("p%d", i), Score: i, Longitude: float64(i-1) * 1000})
	}
	return ps
}

func TestBuild(t *testing.T) {
	ps := points(3)
	routes := []*tour.Route{
		{ID: 1, From: 1, To: 2, Distance: 10},
		{ID: 2, From: 2, To: 3, Distance: 20},
	}
	city, err := Build(ps, routes)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, city.PointIDs())
	assert.Equal(t, 2, city.RouteCount())
	assert.InDelta(t, 30.0, city.TotalDistance(), 1e-9)

	// The graph owns copies.
	ps[0].Score = 99
	routes[0].Distance = 99
	w, err := city.Point(3)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Entity.Score)
	rw, err := city.Route(1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rw.Weight(), 1e-9)
}

func TestBuildRejectsBadRecords(t *testing.T) {
	_, err := Build(points(2), []*tour.Route{{ID: 1, From: 1, To: 7, Distance: 1}})
	assert.ErrorIs(t, err, ErrUnknownPoint)

	_, err = Build([]*tour.Point{{ID: 0}}, nil)
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = Build([]*tour.Point{{ID: 1, VisitDuration: -time.Minute}}, nil)
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = Build(nil, nil)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestComplete(t *testing.T) {
	city, err := Complete(points(4), WithMetric(Euclidean))
	require.NoError(t, err)
	assert.Equal(t, 12, city.RouteCount())

	rw, err := city.Route(1, 4)
	require.NoError(t, err)
	assert.InDelta(t, 3000.0, rw.Weight(), 1e-9)
	back, err := city.Route(4, 1)
	require.NoError(t, err)
	assert.InDelta(t, rw.Weight(), back.Weight(), 1e-9)

	ids := make([]int, 0, city.RouteCount())
	for _, r := range city.Routes() {
		ids = append(ids, r.Entity.ID)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, ids)
}

func TestHaversine(t *testing.T) {
	// One degree of latitude is about 111.2 km.
	a := &tour.Point{Latitude: 40, Longitude: 14}
	b := &tour.Point{Latitude: 41, Longitude: 14}
	assert.InDelta(t, 111195.0, Haversine(a, b), 50)
	assert.InDelta(t, 0.0, Haversine(a, a), 1e-9)
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
}

func TestOffsetStaysWithinRadius(t *testing.T) {
	lat, lon := offset(defaultCenterLat, defaultCenterLon, 1.1, 800)
	d := Haversine(&tour.Point{Latitude: defaultCenterLat, Longitude: defaultCenterLon}, &tour.Point{Latitude: lat, Longitude: lon})
	assert.InDelta(t, 800.0, d, 1e-3)
}

type pointRecord struct {
	ID       int
	Name     string
	Score    int
	Lat, Lon float64
	Visit    time.Duration
	Hours    []tour.TimeWindow
}

func records(city *tour.Graph) []pointRecord {
	out := make([]pointRecord, 0, city.PointCount())
	for _, w := range city.Points() {
		p := w.Entity
		out = append(out, pointRecord{p.ID, p.Name, p.Score, p.Latitude, p.Longitude, p.VisitDuration, p.OpeningHours})
	}
	return out
}

func TestSyntheticIsDeterministic(t *testing.T) {
	opts := []Option{WithSeed(7), WithOpeningHours(8*time.Hour, 20*time.Hour), WithCategory("museums")}
	a, err := Synthetic(15, opts...)
	require.NoError(t, err)
	b, err := Synthetic(15, opts...)
	require.NoError(t, err)

	if diff := cmp.Diff(records(a), records(b)); diff != "" {
		t.Fatalf("same seed, different cities (-a +b):\n%s", diff)
	}
	assert.Equal(t, 15*14, a.RouteCount())

	c, err := Synthetic(15, WithSeed(8))
	require.NoError(t, err)
	assert.NotEqual(t, records(a), records(c))
}

func TestSyntheticShape(t *testing.T) {
	city, err := Synthetic(30, WithRand(rand.New(rand.NewSource(3))), WithScoreRange(2, 4), WithVisitRange(5*time.Minute, 15*time.Minute))
	require.NoError(t, err)

	start, err := city.Point(1)
	require.NoError(t, err)
	assert.Equal(t, 0, start.Entity.Score)
	assert.Zero(t, start.Entity.VisitDuration)

	for _, w := range city.Points()[1:] {
		p := w.Entity
		assert.GreaterOrEqual(t, p.Score, 2)
		assert.LessOrEqual(t, p.Score, 4)
		assert.GreaterOrEqual(t, p.VisitDuration, 5*time.Minute)
		assert.LessOrEqual(t, p.VisitDuration, 15*time.Minute)
		assert.LessOrEqual(t, Haversine(start.Entity, p), defaultRadius+1e-6)
	}

	_, err = Synthetic(0)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestOptionsPanicOnNonsense(t *testing.T) {
	assert.Panics(t, func() { WithMetric(nil) })
	assert.Panics(t, func() { WithRand(nil) })
	assert.Panics(t, func() { WithScoreRange(5, 1) })
	assert.Panics(t, func() { WithOpeningHours(10*time.Hour, 9*time.Hour) })
}

func TestPostgresSourceWithoutPool(t *testing.T) {
	var src *PostgresSource
	_, err := src.Points(context.Background(), "", 1, 0)
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = NewPostgresSource(nil).Routes(context.Background(), []int{1})
	assert.ErrorIs(t, err, ErrNoDatabase)
}

// TestPostgresSource runs against CITYSCOVER_TEST_DATABASE_URL in a throwaway schema.
func TestPostgresSource(t *testing.T) {
	url := os.Getenv("CITYSCOVER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CITYSCOVER_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("cityscover_test_%d", time.Now().UnixNano())

	admin, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer admin.Close()
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE") })

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	src := NewPostgresSource(pool)
	defer src.Close()

	_, err = pool.Exec(ctx, `
CREATE TABLE points (
  id integer PRIMARY KEY, name text NOT NULL, category text NOT NULL DEFAULT '',
  score integer NOT NULL, latitude double precision NOT NULL, longitude double precision NOT NULL,
  visit_minutes integer NOT NULL DEFAULT 0, opens_at integer, closes_at integer);
CREATE TABLE routes (
  id integer PRIMARY KEY, from_id integer NOT NULL, to_id integer NOT NULL, distance double precision NOT NULL);
INSERT INTO points VALUES
  (1, 'hotel', 'lodging', 0, 40.85, 14.26, 0, NULL, NULL),
  (2, 'duomo', 'churches', 8, 40.852, 14.26, 30, 480, 1140),
  (3, 'museo', 'museums', 9, 40.853, 14.25, 60, NULL, NULL);`)
	require.NoError(t, err)

	city, err := src.Load(ctx, "churches", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, city.PointIDs())
	assert.Equal(t, 2, city.RouteCount())
	duomo, err := city.Point(2)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, duomo.Entity.VisitDuration)
	assert.Equal(t, []tour.TimeWindow{{Open: 8 * time.Hour, Close: 19 * time.Hour}}, duomo.Entity.OpeningHours)

	_, err = pool.Exec(ctx, `INSERT INTO routes VALUES (1, 1, 3, 750), (2, 3, 1, 760), (3, 2, 3, 10)`)
	require.NoError(t, err)
	city, err = src.Load(ctx, "", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, city.PointIDs())
	// No stored route stays inside {1, 2}, so the pair is completed from coordinates.
	assert.Equal(t, 2, city.RouteCount())

	city, err = src.Load(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, city.RouteCount())
	via, err := city.Route(2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 770.0, via.Weight(), 1e-9)
}

func TestClosure(t *testing.T) {
	// 1 → 2 → 3 → 1 is a one-way loop, plus a long shortcut 1 → 3.
	streets, err := Build(points(4), []*tour.Route{
		{ID: 1, From: 1, To: 2, Distance: 100},
		{ID: 2, From: 2, To: 3, Distance: 100},
		{ID: 3, From: 3, To: 1, Distance: 100},
		{ID: 4, From: 1, To: 3, Distance: 500},
	})
	require.NoError(t, err)

	city, err := Closure(streets)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, city.PointIDs())
	assert.Equal(t, 6, city.RouteCount(), "point 4 is isolated")

	want := map[tour.RouteKey]float64{
		{From: 1, To: 2}: 100, {From: 1, To: 3}: 200,
		{From: 2, To: 3}: 100, {From: 2, To: 1}: 200,
		{From: 3, To: 1}: 100, {From: 3, To: 2}: 200,
	}
	got := make(map[tour.RouteKey]float64, len(want))
	for _, r := range city.Routes() {
		got[tour.RouteKey{From: r.Entity.From, To: r.Entity.To}] = r.Weight()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("closure distances (-want +got):\n%s", diff)
	}

	bad, err := Build(points(2), []*tour.Route{{ID: 1, From: 1, To: 2, Distance: -1}})
	require.NoError(t, err)
	_, err = Closure(bad)
	assert.ErrorIs(t, err, ErrInvalidRoute)

	_, err = Closure(nil)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}
