package memory

import (
	"context"
	"sync"

	"carpool/internal/domain"
)

// BookingRepository is an in-memory, append-only implementation of
// repository.BookingRepository.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings []*domain.Booking
}

// NewBookingRepository creates a new in-memory booking repository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

// Create persists a new booking record.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	r.bookings = append(r.bookings, &cp)
	return nil
}

// GetByRide retrieves all bookings recorded against an offer.
func (r *BookingRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Booking
	for _, b := range r.bookings {
		if b.RideID == rideID {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result, nil
}
