package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// OfferService handles publication and retrieval of ride offers.
type OfferService struct {
	offerRepo repository.OfferRepository
	logger    *slog.Logger
}

// NewOfferService creates a new OfferService.
func NewOfferService(offerRepo repository.OfferRepository, logger *slog.Logger) *OfferService {
	return &OfferService{offerRepo: offerRepo, logger: logger}
}

// CreateOfferInput contains the parameters for publishing an offer.
// DriverID and DriverProfile come from the identity layer, already
// verified; this core treats them as opaque.
type CreateOfferInput struct {
	DriverID      string
	DriverProfile domain.DriverProfile
	Pickup        domain.Location
	Dropoff       domain.Location
	DepartureTime time.Time
	TotalSeats    int
	Fare          float64
}

// CreateOffer validates and publishes a new offer. All seats start
// available and the passenger list starts empty.
func (s *OfferService) CreateOffer(ctx context.Context, input CreateOfferInput) (*domain.RideOffer, error) {
	if input.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !input.Pickup.Valid() {
		return nil, ErrInvalidPickupLocation
	}
	if !input.Dropoff.Valid() {
		return nil, ErrInvalidDropoffLocation
	}
	if input.TotalSeats < 1 {
		return nil, ErrInvalidSeatCount
	}
	if input.Fare < 0 {
		return nil, ErrNegativeFare
	}
	if !input.DepartureTime.After(time.Now()) {
		return nil, ErrPastDeparture
	}

	now := time.Now()
	offer := &domain.RideOffer{
		ID:             uuid.New().String(),
		DriverID:       input.DriverID,
		DriverProfile:  input.DriverProfile,
		Route:          domain.Route{Pickup: input.Pickup, Dropoff: input.Dropoff},
		DepartureTime:  input.DepartureTime,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		Fare:           input.Fare,
		Status:         domain.OfferStatusActive,
		Passengers:     []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("offer published",
		"ride_id", offer.ID,
		"driver_id", offer.DriverID,
		"seats", offer.TotalSeats,
		"departure", offer.DepartureTime,
	)
	return offer, nil
}

// GetOffer retrieves an offer by ID.
func (s *OfferService) GetOffer(ctx context.Context, id string) (*domain.RideOffer, error) {
	if id == "" {
		return nil, ErrInvalidRideID
	}
	return s.offerRepo.GetByID(ctx, id)
}
