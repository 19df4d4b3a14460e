package repository

import (
	"context"

	"carpool/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
// Bookings are append-only; there is no update or delete.
type BookingRepository interface {
	// Create persists a new booking record.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByRide retrieves all bookings recorded against an offer.
	GetByRide(ctx context.Context, rideID string) ([]*domain.Booking, error)
}
