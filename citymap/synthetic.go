// SPDX-License-Identifier: MIT
// File: synthetic.go
// Role: Deterministic random cities.
// Determinism:
//   - For a fixed seed and option set, Synthetic returns identical graphs.
//     Draw order per point: bearing, distance, score, visit duration.

package citymap

import (
	"fmt"
	"math"
	"time"

	"github.com/Fs0ociety/CityScover-sub000/tour"
)

const minSyntheticPoints = 1

// Synthetic returns a complete city of n points scattered around the configured
// centre. Point 1 sits on the centre with score 0 and no visit time, so it can
// serve as the starting point.
func Synthetic(n int, opts ...Option) (*tour.Graph, error) {
	if n < minSyntheticPoints {
		return nil, fmt.Errorf("%w: n=%d", ErrTooFewPoints, n)
	}
	cfg := newBuildConfig(opts...)
	points := make([]*tour.Point, 0, n)
	points = append(points, &tour.Point{
		ID:        1,
		Name:      "start",
		Category:  cfg.category,
		Latitude:  cfg.centerLat,
		Longitude: cfg.centerLon,
	})

	for id := 2; id <= n; id++ {
		bearing := cfg.rng.Float64() * 2 * math.Pi
		// sqrt keeps the density uniform over the disc.
		dist := math.Sqrt(cfg.rng.Float64()) * cfg.radius
		lat, lon := offset(cfg.centerLat, cfg.centerLon, bearing, dist)

		p := &tour.Point{
			ID:            id,
			Name:          fmt.Sprintf("poi-%03d", id),
			Category:      cfg.category,
			Score:         cfg.minScore + cfg.rng.Intn(cfg.maxScore-cfg.minScore+1),
			Latitude:      lat,
			Longitude:     lon,
			VisitDuration: cfg.minVisit + drawMinutes(cfg, cfg.maxVisit-cfg.minVisit),
		}
		if len(cfg.hours) == 2 {
			p.OpeningHours = []tour.TimeWindow{{Open: cfg.hours[0], Close: cfg.hours[1]}}
		}
		points = append(points, p)
	}

	return Complete(points, opts...)
}

func drawMinutes(cfg buildConfig, span time.Duration) time.Duration {
	m := int(span / time.Minute)
	if m <= 0 {
		return 0
	}

	return time.Duration(cfg.rng.Intn(m+1)) * time.Minute
}

// offset moves dist meters from (lat, lon) along bearing (radians from north).
func offset(lat, lon, bearing, dist float64) (float64, float64) {
	φ1 := lat * math.Pi / 180
	λ1 := lon * math.Pi / 180
	δ := dist / earthRadius
	φ2 := math.Asin(math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(bearing))
	λ2 := λ1 + math.Atan2(math.Sin(bearing)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2))

	return φ2 * 180 / math.Pi, λ2 * 180 / math.Pi
}
