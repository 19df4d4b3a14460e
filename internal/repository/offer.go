package repository

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// OfferQuery filters the offer set. Zero values mean "no constraint".
type OfferQuery struct {
	Status         domain.OfferStatus
	DepartingAfter time.Time
}

// OfferRepository defines the persistence operations for ride offers.
//
// UpdateConditional is the only mutation path for AvailableSeats and
// Passengers. It persists the given offer only if the stored version still
// equals offer.Version, bumping the version on success; a stale version
// yields ErrConflict and leaves the record untouched. This is what makes
// concurrent seat bookings lose cleanly instead of losing updates.
type OfferRepository interface {
	// Create persists a new offer.
	Create(ctx context.Context, offer *domain.RideOffer) error

	// GetByID retrieves an offer by ID.
	GetByID(ctx context.Context, id string) (*domain.RideOffer, error)

	// Query retrieves all offers matching the query.
	Query(ctx context.Context, q OfferQuery) ([]*domain.RideOffer, error)

	// UpdateConditional writes the offer if and only if the stored
	// version equals offer.Version. On success offer.Version is
	// advanced to the committed version.
	UpdateConditional(ctx context.Context, offer *domain.RideOffer) error
}
