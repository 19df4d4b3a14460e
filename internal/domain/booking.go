package domain

import "time"

// Booking is the immutable record of a committed seat allocation. It is
// written once, on a successful seat decrement, and never mutated;
// cancellation is recorded as new state elsewhere so the audit trail
// survives.
type Booking struct {
	ID         string
	RideID     string
	RiderID    string
	FareAmount float64
	BookedAt   time.Time
}
