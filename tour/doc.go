// Package tour specializes core.Graph for sightseeing tours.
//
// Nodes carry a *PointWorker (a point of interest plus per-tour state: visited
// flag, arrival and departure clock times); edges carry a *RouteWorker (a route
// plus a visited flag) whose weight is the route distance in meters.
//
// The same Graph type represents both the static city map, which is built once
// and only read afterwards, and a candidate tour, which is built incrementally by
// importing points and routes from the city map:
//
//	city := citymap.Build(points, routes)   // read-only template
//	t := tour.New()
//	_ = t.ImportPoint(city, start)
//	_ = t.ImportPoint(city, next)
//	_ = t.ImportRoute(city, start, next)
//	_ = t.ImportRoute(city, next, start)    // closes the cycle
//	end, _ := t.UpdateTimes(start, 9*time.Hour, 3.5)
//
// DeepCopy produces a fully independent graph: every worker and every entity is
// cloned, so two candidates never share mutable state.
//
// Clock times are time.Duration offsets from midnight. Walking speed is in km/h.
package tour
