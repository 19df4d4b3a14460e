package domain

import (
	"slices"
	"time"
)

// OfferStatus represents the current status of a ride offer.
type OfferStatus string

const (
	OfferStatusActive     OfferStatus = "ACTIVE"
	OfferStatusInProgress OfferStatus = "IN_PROGRESS"
	OfferStatusCompleted  OfferStatus = "COMPLETED"
	OfferStatusCancelled  OfferStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s OfferStatus) Terminal() bool {
	return s == OfferStatusCompleted || s == OfferStatusCancelled
}

// VehicleDetails describes the driver's vehicle, snapshotted at offer time.
type VehicleDetails struct {
	Model  string
	Number string
	Color  string
}

// DriverProfile is a read-only snapshot of the driver taken when the
// offer is published. Identity itself is an opaque verified user id.
type DriverProfile struct {
	Name    string
	Phone   string
	Rating  float64
	Vehicle VehicleDetails
}

// RideOffer represents a driver's published trip.
//
// AvailableSeats and Passengers are mutated only through the repository's
// conditional-update path, owned by the booking service. Status is mutated
// only by the lifecycle service. Offers are never deleted, only moved to a
// terminal status.
type RideOffer struct {
	ID             string
	DriverID       string
	DriverProfile  DriverProfile
	Route          Route
	DepartureTime  time.Time
	TotalSeats     int
	AvailableSeats int
	Fare           float64
	Status         OfferStatus
	Passengers     []string

	// Version is the optimistic-concurrency marker checked by
	// conditional updates. Incremented on every successful mutation.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassenger reports whether riderID currently holds a seat.
func (o *RideOffer) HasPassenger(riderID string) bool {
	return slices.Contains(o.Passengers, riderID)
}

// SeatInvariantHolds checks the seat-accounting invariant:
// 0 <= AvailableSeats <= TotalSeats and
// AvailableSeats == TotalSeats - len(Passengers).
func (o *RideOffer) SeatInvariantHolds() bool {
	if o.AvailableSeats < 0 || o.AvailableSeats > o.TotalSeats {
		return false
	}
	return o.AvailableSeats == o.TotalSeats-len(o.Passengers)
}

// Clone returns a deep copy. Repositories hand out clones so callers
// can never mutate stored state outside the conditional-update path.
func (o *RideOffer) Clone() *RideOffer {
	cp := *o
	cp.Passengers = slices.Clone(o.Passengers)
	return &cp
}

// CanTransitionTo reports whether the offer status machine permits the move.
// active -> inProgress -> completed, with cancellation allowed from
// active and inProgress.
func (o *RideOffer) CanTransitionTo(next OfferStatus) bool {
	switch o.Status {
	case OfferStatusActive:
		return next == OfferStatusInProgress || next == OfferStatusCancelled
	case OfferStatusInProgress:
		return next == OfferStatusCompleted || next == OfferStatusCancelled
	default:
		return false
	}
}
