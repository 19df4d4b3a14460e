package geo

import (
	"math"

	"carpool/internal/domain"
)

// earthRadiusKm is the spherical-earth approximation used by the
// haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two locations in
// kilometers. Pure and deterministic; callers reject NaN coordinates
// upstream.
func DistanceKm(a, b domain.Location) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// IsNearby reports whether the two locations are within thresholdKm of
// each other.
func IsNearby(a, b domain.Location, thresholdKm float64) bool {
	return DistanceKm(a, b) <= thresholdKm
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
