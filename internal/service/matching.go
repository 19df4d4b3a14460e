package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"carpool/internal/domain"
	"carpool/internal/geo"
	"carpool/internal/observability"
	"carpool/internal/repository"
)

// DefaultMaxDistanceKm is the proximity threshold applied when the search
// does not specify one.
const DefaultMaxDistanceKm = 5.0

// MatchingService finds and ranks offers near a rider's route.
type MatchingService struct {
	offerRepo repository.OfferRepository
	logger    *slog.Logger
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(offerRepo repository.OfferRepository, logger *slog.Logger) *MatchingService {
	return &MatchingService{offerRepo: offerRepo, logger: logger}
}

// SearchInput contains the parameters for a candidate search.
type SearchInput struct {
	Pickup        domain.Location
	Dropoff       domain.Location
	NotBefore     time.Time
	MaxDistanceKm float64 // 0 uses DefaultMaxDistanceKm
	Seats         int     // 0 means any seat count
}

// FindCandidates returns active offers departing at or after NotBefore
// whose pickup AND dropoff both lie within the distance threshold of the
// rider's, ordered by departure time ascending with ties broken by ID.
// An empty result is not an error. Each call is a fresh, finite search,
// not a standing cursor.
func (s *MatchingService) FindCandidates(ctx context.Context, input SearchInput) ([]*domain.RideOffer, error) {
	if !input.Pickup.Valid() {
		return nil, ErrInvalidPickupLocation
	}
	if !input.Dropoff.Valid() {
		return nil, ErrInvalidDropoffLocation
	}

	maxDistanceKm := input.MaxDistanceKm
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}

	timer := prometheus.NewTimer(observability.SearchLatency)
	defer timer.ObserveDuration()

	offers, err := s.offerRepo.Query(ctx, repository.OfferQuery{
		Status:         domain.OfferStatusActive,
		DepartingAfter: input.NotBefore,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]*domain.RideOffer, 0, len(offers))
	for _, offer := range offers {
		if !geo.IsNearby(offer.Route.Pickup, input.Pickup, maxDistanceKm) {
			continue
		}
		if !geo.IsNearby(offer.Route.Dropoff, input.Dropoff, maxDistanceKm) {
			continue
		}
		if input.Seats > 0 && offer.AvailableSeats < input.Seats {
			continue
		}
		candidates = append(candidates, offer)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DepartureTime.Equal(candidates[j].DepartureTime) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].DepartureTime.Before(candidates[j].DepartureTime)
	})

	s.logger.Debug("candidate search",
		"examined", len(offers),
		"matched", len(candidates),
		"max_distance_km", maxDistanceKm,
	)
	return candidates, nil
}
