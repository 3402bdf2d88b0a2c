// SPDX-License-Identifier: MIT
// File: types.go
// Role: Point and route entities, their per-tour workers, time windows and
//       sentinel errors.

package tour

import (
	"errors"
	"time"
)

// Sentinel errors for tour graph operations.
var (
	// ErrPointNotInTemplate is returned when ImportPoint asks for a point the template lacks.
	ErrPointNotInTemplate = errors.New("tour: point not found in template graph")

	// ErrRouteNotInTemplate is returned when ImportRoute asks for a route the template lacks.
	ErrRouteNotInTemplate = errors.New("tour: route not found in template graph")

	// ErrEmptyTour is returned by queries that need at least one point.
	ErrEmptyTour = errors.New("tour: graph has no points")

	// ErrClosedTour is returned by StartPoint/EndPoint when every point has both
	// an incoming and an outgoing route.
	ErrClosedTour = errors.New("tour: graph is a closed cycle")

	// ErrNotAPath is returned when the graph is not a single open path.
	ErrNotAPath = errors.New("tour: graph is not a single open path")

	// ErrNotACycle is returned by ValidateCycle when the routes do not form one
	// cycle through every point.
	ErrNotACycle = errors.New("tour: graph is not a single cycle")

	// ErrNoSuccessor is returned by Next when a point has no unique outgoing route.
	ErrNoSuccessor = errors.New("tour: point has no unique successor")

	// ErrInvalidSpeed is returned when the walking speed is not positive.
	ErrInvalidSpeed = errors.New("tour: walking speed must be positive")
)

// TimeWindow is an opening interval expressed as offsets from midnight.
type TimeWindow struct {
	Open  time.Duration
	Close time.Duration
}

// Admits reports whether a visit arriving at arrival and lasting visit fits in the window.
func (w TimeWindow) Admits(arrival, visit time.Duration) bool {
	return arrival >= w.Open && arrival+visit <= w.Close
}

// Point is a point of interest of the city map.
type Point struct {
	ID       int
	Name     string
	Category string

	// Score is the thematic score collected when the point is visited.
	Score int

	// Latitude and Longitude are optional; they are used to derive distances
	// when a city map is built without explicit routes.
	Latitude  float64
	Longitude float64

	VisitDuration time.Duration

	// OpeningHours lists the opening windows. An empty list means always open.
	OpeningHours []TimeWindow
}

// Clone returns an independent copy of the point.
func (p *Point) Clone() *Point {
	c := *p
	if p.OpeningHours != nil {
		c.OpeningHours = make([]TimeWindow, len(p.OpeningHours))
		copy(c.OpeningHours, p.OpeningHours)
	}

	return &c
}

// Admits reports whether some opening window admits a visit arriving at arrival.
func (p *Point) Admits(arrival time.Duration) bool {
	if len(p.OpeningHours) == 0 {
		return true
	}
	var w TimeWindow
	for _, w = range p.OpeningHours {
		if w.Admits(arrival, p.VisitDuration) {
			return true
		}
	}

	return false
}

// Route is a walkable connection between two points.
type Route struct {
	ID   int
	From int
	To   int

	// Distance is the walking distance in meters.
	Distance float64
}

// Reverse returns the opposite route with the given id.
func (r *Route) Reverse(id int) *Route {
	return &Route{ID: id, From: r.To, To: r.From, Distance: r.Distance}
}

// PointWorker is the per-tour state of a point: visited flag and timing.
type PointWorker struct {
	Entity *Point

	Visited bool

	// Arrival and Departure are clock times computed by UpdateTimes.
	Arrival   time.Duration
	Departure time.Duration
}

// NewPointWorker wraps p in a fresh worker.
func NewPointWorker(p *Point) *PointWorker { return &PointWorker{Entity: p} }

// ID returns the entity id.
func (w *PointWorker) ID() int { return w.Entity.ID }

// Clone returns an independent worker with its own entity copy.
func (w *PointWorker) Clone() *PointWorker {
	c := *w
	c.Entity = w.Entity.Clone()

	return &c
}

// RouteWorker is the per-tour state of a route.
type RouteWorker struct {
	Entity *Route

	Visited bool
}

// NewRouteWorker wraps r in a fresh worker.
func NewRouteWorker(r *Route) *RouteWorker { return &RouteWorker{Entity: r} }

// Weight returns the route distance in meters.
func (w *RouteWorker) Weight() float64 { return w.Entity.Distance }

// Clone returns an independent worker with its own entity copy.
func (w *RouteWorker) Clone() *RouteWorker {
	e := *w.Entity

	return &RouteWorker{Entity: &e, Visited: w.Visited}
}

// TravelTime converts a walking distance in meters to a duration at speedKmh.
func TravelTime(meters, speedKmh float64) time.Duration {
	if speedKmh <= 0 {
		return 0
	}
	metersPerSecond := speedKmh * 1000 / 3600

	return time.Duration(meters / metersPerSecond * float64(time.Second))
}

// RouteKey identifies a route by its endpoints.
type RouteKey struct{ From, To int }

// Undirected returns the key with endpoints ordered ascending, so that a route
// and its reverse compare equal.
func (k RouteKey) Undirected() RouteKey {
	if k.From > k.To {
		return RouteKey{From: k.To, To: k.From}
	}

	return k
}
