package memory

import (
	"context"
	"sync"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// OfferRepository is an in-memory implementation of
// repository.OfferRepository. The version check and the write happen under
// one lock, which gives the conditional update the same atomicity the
// Postgres adapter gets from a guarded UPDATE.
type OfferRepository struct {
	mu     sync.RWMutex
	offers map[string]*domain.RideOffer
}

// NewOfferRepository creates a new in-memory offer repository.
func NewOfferRepository() *OfferRepository {
	return &OfferRepository{offers: make(map[string]*domain.RideOffer)}
}

// Create persists a new offer.
func (r *OfferRepository) Create(ctx context.Context, offer *domain.RideOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[offer.ID] = offer.Clone()
	return nil
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.RideOffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	offer, ok := r.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return offer.Clone(), nil
}

// Query retrieves all offers matching the query.
func (r *OfferRepository) Query(ctx context.Context, q repository.OfferQuery) ([]*domain.RideOffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.RideOffer
	for _, offer := range r.offers {
		if q.Status != "" && offer.Status != q.Status {
			continue
		}
		if !q.DepartingAfter.IsZero() && offer.DepartureTime.Before(q.DepartingAfter) {
			continue
		}
		result = append(result, offer.Clone())
	}
	return result, nil
}

// UpdateConditional writes the offer if the stored version still equals
// offer.Version, advancing the version on success.
func (r *OfferRepository) UpdateConditional(ctx context.Context, offer *domain.RideOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.offers[offer.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != offer.Version {
		return repository.ErrConflict
	}

	offer.Version++
	r.offers[offer.ID] = offer.Clone()
	return nil
}
