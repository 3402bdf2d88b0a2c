// SPDX-License-Identifier: MIT
// File: postgres.go
// Role: City map source backed by PostgreSQL.
//
// Schema:
//
//	CREATE TABLE points (
//	  id            integer PRIMARY KEY,
//	  name          text    NOT NULL,
//	  category      text    NOT NULL DEFAULT '',
//	  score         integer NOT NULL,
//	  latitude      double precision NOT NULL,
//	  longitude     double precision NOT NULL,
//	  visit_minutes integer NOT NULL DEFAULT 0,
//	  opens_at      integer,          -- minutes from midnight, NULL means always open
//	  closes_at     integer
//	);
//	CREATE TABLE routes (
//	  id        integer PRIMARY KEY,
//	  from_id   integer NOT NULL REFERENCES points(id),
//	  to_id     integer NOT NULL REFERENCES points(id),
//	  distance  double precision NOT NULL  -- meters
//	);

package citymap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// PostgresSource loads city maps from the points and routes tables.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource wraps an existing pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// OpenPostgres connects to databaseURL and verifies the connection.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("citymap: open postgres: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("citymap: ping postgres: %w", err)
	}

	return &PostgresSource{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const pointsQuery = `
SELECT id, name, category, score, latitude, longitude, visit_minutes, opens_at, closes_at
FROM points
WHERE ($1 = '' OR category = $1 OR id = $3)
ORDER BY id
LIMIT NULLIF($2, 0)`

const routesQuery = `
SELECT id, from_id, to_id, distance
FROM routes
WHERE from_id = ANY($1) AND to_id = ANY($1)
ORDER BY id`

// Points returns the points of category, or of every category when empty, plus
// the starting point start whatever its category. limit 0 means no limit.
func (s *PostgresSource) Points(ctx context.Context, category string, start, limit int) ([]*tour.Point, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNoDatabase
	}
	rows, err := s.pool.Query(ctx, pointsQuery, category, limit, start)
	if err != nil {
		return nil, fmt.Errorf("citymap: query points: %w", err)
	}
	points, err := pgx.CollectRows(rows, scanPoint)
	if err != nil {
		return nil, fmt.Errorf("citymap: scan points: %w", err)
	}

	return points, nil
}

func scanPoint(row pgx.CollectableRow) (*tour.Point, error) {
	var (
		p             tour.Point
		visit         int
		opens, closes *int
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Score, &p.Latitude, &p.Longitude, &visit, &opens, &closes); err != nil {
		return nil, err
	}
	p.VisitDuration = time.Duration(visit) * time.Minute
	if opens != nil && closes != nil {
		p.OpeningHours = []tour.TimeWindow{{
			Open:  time.Duration(*opens) * time.Minute,
			Close: time.Duration(*closes) * time.Minute,
		}}
	}

	return &p, nil
}

// Routes returns the routes whose endpoints are both in ids.
func (s *PostgresSource) Routes(ctx context.Context, ids []int) ([]*tour.Route, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNoDatabase
	}
	rows, err := s.pool.Query(ctx, routesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("citymap: query routes: %w", err)
	}
	routes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*tour.Route, error) {
		var r tour.Route
		err := row.Scan(&r.ID, &r.From, &r.To, &r.Distance)
		return &r, err
	})
	if err != nil {
		return nil, fmt.Errorf("citymap: scan routes: %w", err)
	}

	return routes, nil
}

// Load builds the city map for category. Stored routes are treated as a street
// graph and closed with Closure; without any, the points are connected with
// Complete and opts.
func (s *PostgresSource) Load(ctx context.Context, category string, start, limit int, opts ...Option) (*tour.Graph, error) {
	log := ctxlog.FromContext(ctx)
	points, err := s.Points(ctx, category, start, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	routes, err := s.Routes(ctx, ids)
	if err != nil {
		return nil, err
	}
	log.Debug("city map loaded", "category", category, "points", len(points), "routes", len(routes))

	if len(routes) == 0 {
		return Complete(points, opts...)
	}

	streets, err := Build(points, routes)
	if err != nil {
		return nil, err
	}

	return Closure(streets)
}
