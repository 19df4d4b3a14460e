package domain

// Location is a geographic point with its human-readable address.
// Immutable once attached to an offer or request.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Valid reports whether the coordinates are within range. The checks are
// written positively so NaN, which fails every comparison, is rejected too.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Route is the pickup/dropoff pair published with an offer.
type Route struct {
	Pickup  Location
	Dropoff Location
}
