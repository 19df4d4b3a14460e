package repository

import (
	"context"

	"carpool/internal/domain"
)

// RequestRepository defines the persistence operations for ride requests.
type RequestRepository interface {
	// Create persists a new request.
	Create(ctx context.Context, req *domain.RideRequest) error

	// GetByID retrieves a request by ID.
	GetByID(ctx context.Context, id string) (*domain.RideRequest, error)

	// GetByRide retrieves all requests attached to an offer.
	GetByRide(ctx context.Context, rideID string) ([]*domain.RideRequest, error)

	// GetByRideAndRider retrieves the rider's request for an offer, if any.
	GetByRideAndRider(ctx context.Context, rideID, riderID string) (*domain.RideRequest, error)

	// UpdateStatus transitions a request to the given status.
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error
}
