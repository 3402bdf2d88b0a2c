// SPDX-License-Identifier: MIT

package citymap

import "errors"

// Sentinel errors.
var (
	// ErrTooFewPoints is returned when a builder is asked for fewer points than it needs.
	ErrTooFewPoints = errors.New("citymap: too few points")

	// ErrUnknownPoint is returned when a route references a point that was not supplied.
	ErrUnknownPoint = errors.New("citymap: route references an unknown point")

	// ErrInvalidPoint is returned for points with a non-positive id or a negative visit.
	ErrInvalidPoint = errors.New("citymap: invalid point record")

	// ErrInvalidRoute is returned for routes with a negative or NaN distance.
	ErrInvalidRoute = errors.New("citymap: invalid route record")

	// ErrNoDatabase is returned when a PostgresSource has no pool.
	ErrNoDatabase = errors.New("citymap: no database pool")
)
