// SPDX-License-Identifier: MIT

package citymap

import (
	"math"

	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// Metric returns the walking distance in meters between two points.
type Metric func(a, b *tour.Point) float64

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371008.8

// Haversine is the great-circle distance between the points' coordinates.
func Haversine(a, b *tour.Point) float64 {
	lat1, lat2 := a.Latitude*math.Pi/180, b.Latitude*math.Pi/180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Euclidean treats Latitude and Longitude as planar y and x coordinates in meters.
func Euclidean(a, b *tour.Point) float64 {
	return math.Hypot(b.Longitude-a.Longitude, b.Latitude-a.Latitude)
}
