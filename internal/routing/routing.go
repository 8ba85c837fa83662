// Package routing provides point-to-point distance lookups for the
// volunteer selection engine. A richer road-routing backend can be
// plugged in; every implementation degrades to the straight-line
// great-circle distance when no better answer is available, so a
// distance lookup never fails the caller.
package routing

import (
	"context"
	"math"
)

const earthRadiusKm = 6371.0

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Router resolves the distance of one delivery leg in kilometers.
type Router interface {
	DistanceKm(ctx context.Context, from, to Coordinate) float64
}

// HaversineKm returns the great-circle distance between two
// coordinates in kilometers.
func HaversineKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// StraightLine is the fallback Router: pure great-circle distance with
// no external calls.
type StraightLine struct{}

func (StraightLine) DistanceKm(_ context.Context, from, to Coordinate) float64 {
	return HaversineKm(from, to)
}
