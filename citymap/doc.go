// SPDX-License-Identifier: MIT
// Package citymap builds the static city graph a solver runs on.
//
// Sources:
//   - Build wires explicit point and route records.
//   - Complete connects every ordered pair of points, deriving distances from
//     coordinates with a Metric (Haversine by default).
//   - Closure turns a sparse street graph into direct shortest-walk routes.
//   - Synthetic generates a deterministic random city for tests and demos.
//   - PostgresSource reads points, and optionally street routes, from PostgreSQL.
//
// Every builder returns a fresh *tour.Graph that callers must treat as read-only
// once handed to a solver.
package citymap
