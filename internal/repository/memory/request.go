package memory

import (
	"context"
	"sync"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RequestRepository is an in-memory implementation of
// repository.RequestRepository.
type RequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.RideRequest
}

// NewRequestRepository creates a new in-memory request repository.
func NewRequestRepository() *RequestRepository {
	return &RequestRepository{requests: make(map[string]*domain.RideRequest)}
}

// Create persists a new request.
func (r *RequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

// GetByID retrieves a request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

// GetByRide retrieves all requests attached to an offer.
func (r *RequestRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.RideRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.RideRequest
	for _, req := range r.requests {
		if req.RideID == rideID {
			cp := *req
			result = append(result, &cp)
		}
	}
	return result, nil
}

// GetByRideAndRider retrieves the rider's request for an offer. When the
// rider has booked the same offer more than once over time, the most
// recent request wins, matching the Postgres adapter.
func (r *RequestRepository) GetByRideAndRider(ctx context.Context, rideID, riderID string) (*domain.RideRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.RideRequest
	for _, req := range r.requests {
		if req.RideID != rideID || req.RiderID != riderID {
			continue
		}
		if latest == nil || req.CreatedAt.After(latest.CreatedAt) {
			latest = req
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// UpdateStatus transitions a request to the given status.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}
