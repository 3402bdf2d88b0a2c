// SPDX-License-Identifier: MIT
// File: build.go
// Role: City graphs from explicit records.
// Determinism:
//   - Points are inserted in ascending id order; Complete emits routes for the
//     ordered pairs (i,j), i≠j, lexicographically, with ids 1, 2, 3, ...
// Complexity:
//   - Build: O(P + R). Complete: O(P²) routes.

package citymap

import (
	"fmt"
	"sort"

	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// Build returns a city graph holding copies of points and routes. Routes must
// reference supplied points.
func Build(points []*tour.Point, routes []*tour.Route) (*tour.Graph, error) {
	city, err := addPoints(points)
	if err != nil {
		return nil, err
	}
	for _, r := range routes {
		if !city.ContainsPoint(r.From) || !city.ContainsPoint(r.To) {
			return nil, fmt.Errorf("%w: route %d (%d→%d)", ErrUnknownPoint, r.ID, r.From, r.To)
		}
		rc := *r
		if err = city.AddRoute(&rc); err != nil {
			return nil, fmt.Errorf("citymap: route %d: %w", r.ID, err)
		}
	}

	return city, nil
}

// Complete returns a city graph where every point reaches every other point
// directly, with distances from the configured Metric.
func Complete(points []*tour.Point, opts ...Option) (*tour.Graph, error) {
	cfg := newBuildConfig(opts...)
	city, err := addPoints(points)
	if err != nil {
		return nil, err
	}
	ws := city.Points()
	id := 0
	for _, a := range ws {
		for _, b := range ws {
			if a.ID() == b.ID() {
				continue
			}
			id++
			r := &tour.Route{ID: id, From: a.ID(), To: b.ID(), Distance: cfg.metric(a.Entity, b.Entity)}
			if err = city.AddRoute(r); err != nil {
				return nil, fmt.Errorf("citymap: route %d→%d: %w", r.From, r.To, err)
			}
		}
	}

	return city, nil
}

func addPoints(points []*tour.Point) (*tour.Graph, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrTooFewPoints)
	}
	sorted := make([]*tour.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	city := tour.New()
	for _, p := range sorted {
		if p == nil || p.ID <= 0 || p.VisitDuration < 0 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidPoint, p)
		}
		if err := city.AddPoint(p.Clone()); err != nil {
			return nil, fmt.Errorf("citymap: point %d: %w", p.ID, err)
		}
	}

	return city, nil
}
