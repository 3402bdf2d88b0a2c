// SPDX-License-Identifier: MIT
// File: options.go
// Role: Functional options for Complete and Synthetic.
// Contract:
//   - Option constructors panic on meaningless input (nil functions, inverted
//     ranges); builders themselves never panic.
//   - Randomness only comes from WithSeed or WithRand.

package citymap

import (
	"math/rand"
	"time"
)

// Option customizes a builder.
type Option func(*buildConfig)

type buildConfig struct {
	metric Metric
	rng    *rand.Rand

	// Synthetic only.
	centerLat, centerLon float64
	radius               float64 // meters
	minScore, maxScore   int
	minVisit, maxVisit   time.Duration
	category             string
	hours                []time.Duration // open, close; empty means always open
}

const (
	defaultSeed     = 1
	defaultRadius   = 1500.0
	defaultMinScore = 1
	defaultMaxScore = 10
	defaultMinVisit = 10 * time.Minute
	defaultMaxVisit = 60 * time.Minute

	// Historic centre of Naples.
	defaultCenterLat = 40.8518
	defaultCenterLon = 14.2681
)

func newBuildConfig(opts ...Option) buildConfig {
	cfg := buildConfig{
		metric:    Haversine,
		centerLat: defaultCenterLat,
		centerLon: defaultCenterLon,
		radius:    defaultRadius,
		minScore:  defaultMinScore,
		maxScore:  defaultMaxScore,
		minVisit:  defaultMinVisit,
		maxVisit:  defaultMaxVisit,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(defaultSeed))
	}

	return cfg
}

// WithMetric sets the distance function used to connect points.
func WithMetric(m Metric) Option {
	if m == nil {
		panic("citymap: WithMetric(nil)")
	}
	return func(c *buildConfig) { c.metric = m }
}

// WithSeed seeds the generator used by Synthetic.
func WithSeed(seed int64) Option {
	return func(c *buildConfig) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies the generator used by Synthetic.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("citymap: WithRand(nil)")
	}
	return func(c *buildConfig) { c.rng = r }
}

// WithCenter places synthetic points within radius meters of (lat, lon).
func WithCenter(lat, lon, radius float64) Option {
	if radius <= 0 {
		panic("citymap: WithCenter(radius<=0)")
	}
	return func(c *buildConfig) { c.centerLat, c.centerLon, c.radius = lat, lon, radius }
}

// WithScoreRange draws synthetic scores uniformly from [lo, hi].
func WithScoreRange(lo, hi int) Option {
	if lo < 0 || hi < lo {
		panic("citymap: WithScoreRange(invalid range)")
	}
	return func(c *buildConfig) { c.minScore, c.maxScore = lo, hi }
}

// WithVisitRange draws synthetic visit durations uniformly from [lo, hi] minutes.
func WithVisitRange(lo, hi time.Duration) Option {
	if lo < 0 || hi < lo {
		panic("citymap: WithVisitRange(invalid range)")
	}
	return func(c *buildConfig) { c.minVisit, c.maxVisit = lo, hi }
}

// WithCategory tags every synthetic point with category.
func WithCategory(category string) Option {
	return func(c *buildConfig) { c.category = category }
}

// WithOpeningHours gives every synthetic point, except the first, one opening window.
func WithOpeningHours(opens, closes time.Duration) Option {
	if closes <= opens {
		panic("citymap: WithOpeningHours(closes<=opens)")
	}
	return func(c *buildConfig) { c.hours = []time.Duration{opens, closes} }
}
