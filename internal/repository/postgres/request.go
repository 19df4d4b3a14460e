package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RequestRepository is a PostgreSQL implementation of
// repository.RequestRepository.
type RequestRepository struct {
	q Querier
}

// NewRequestRepository creates a new PostgreSQL request repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{q: db}
}

// NewRequestRepositoryWithTx creates a request repository using a transaction.
func NewRequestRepositoryWithTx(tx *sql.Tx) *RequestRepository {
	return &RequestRepository{q: tx}
}

const requestColumns = `id, ride_id, rider_id, rider_name, rider_phone, rider_rating,
	status, fare, payment_status, created_at, updated_at`

// Create persists a new request.
func (r *RequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	query := `
		INSERT INTO ride_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		req.ID,
		req.RideID,
		req.RiderID,
		req.RiderProfile.Name,
		req.RiderProfile.Phone,
		req.RiderProfile.Rating,
		req.Status,
		req.Fare,
		req.PaymentStatus,
		req.CreatedAt,
		req.UpdatedAt,
	)

	return err
}

// GetByID retrieves a request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE id = $1`

	req, err := scanRequest(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// GetByRide retrieves all requests attached to an offer.
func (r *RequestRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.RideRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE ride_id = $1 ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.RideRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// GetByRideAndRider retrieves the rider's request for an offer, if any.
// When a rider has booked the same offer more than once over time, the
// most recent request wins.
func (r *RequestRepository) GetByRideAndRider(ctx context.Context, rideID, riderID string) (*domain.RideRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM ride_requests
		WHERE ride_id = $1 AND rider_id = $2
		ORDER BY created_at DESC LIMIT 1
	`

	req, err := scanRequest(r.q.QueryRowContext(ctx, query, rideID, riderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// UpdateStatus transitions a request to the given status.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	query := `UPDATE ride_requests SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanRequest(row rowScanner) (*domain.RideRequest, error) {
	var req domain.RideRequest

	err := row.Scan(
		&req.ID,
		&req.RideID,
		&req.RiderID,
		&req.RiderProfile.Name,
		&req.RiderProfile.Phone,
		&req.RiderProfile.Rating,
		&req.Status,
		&req.Fare,
		&req.PaymentStatus,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
