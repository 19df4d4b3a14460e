package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// OfferRepository is a PostgreSQL implementation of
// repository.OfferRepository. The conditional update is a version-guarded
// UPDATE; a zero row count with an existing row means the version moved
// underneath the caller.
type OfferRepository struct {
	q Querier
}

// NewOfferRepository creates a new PostgreSQL offer repository.
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{q: db}
}

// NewOfferRepositoryWithTx creates an offer repository using a transaction.
func NewOfferRepositoryWithTx(tx *sql.Tx) *OfferRepository {
	return &OfferRepository{q: tx}
}

const offerColumns = `id, driver_id, driver_name, driver_phone, driver_rating,
	vehicle_model, vehicle_number, vehicle_color,
	pickup_lat, pickup_lng, pickup_address,
	dropoff_lat, dropoff_lng, dropoff_address,
	departure_time, total_seats, available_seats, fare, status, passengers,
	version, created_at, updated_at`

// Create persists a new offer.
func (r *OfferRepository) Create(ctx context.Context, offer *domain.RideOffer) error {
	query := `
		INSERT INTO ride_offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.q.ExecContext(ctx, query,
		offer.ID,
		offer.DriverID,
		offer.DriverProfile.Name,
		offer.DriverProfile.Phone,
		offer.DriverProfile.Rating,
		offer.DriverProfile.Vehicle.Model,
		offer.DriverProfile.Vehicle.Number,
		offer.DriverProfile.Vehicle.Color,
		offer.Route.Pickup.Latitude,
		offer.Route.Pickup.Longitude,
		offer.Route.Pickup.Address,
		offer.Route.Dropoff.Latitude,
		offer.Route.Dropoff.Longitude,
		offer.Route.Dropoff.Address,
		offer.DepartureTime,
		offer.TotalSeats,
		offer.AvailableSeats,
		offer.Fare,
		offer.Status,
		pq.Array(offer.Passengers),
		offer.Version,
		offer.CreatedAt,
		offer.UpdatedAt,
	)

	return err
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.RideOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM ride_offers WHERE id = $1`

	offer, err := scanOffer(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return offer, nil
}

// Query retrieves all offers matching the query.
func (r *OfferRepository) Query(ctx context.Context, q repository.OfferQuery) ([]*domain.RideOffer, error) {
	var (
		clauses []string
		args    []any
	)
	if q.Status != "" {
		args = append(args, q.Status)
		clauses = append(clauses, "status = $1")
	}
	if !q.DepartingAfter.IsZero() {
		args = append(args, q.DepartingAfter)
		if len(args) == 1 {
			clauses = append(clauses, "departure_time >= $1")
		} else {
			clauses = append(clauses, "departure_time >= $2")
		}
	}

	query := `SELECT ` + offerColumns + ` FROM ride_offers`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []*domain.RideOffer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

// UpdateConditional writes the offer if and only if the stored version
// equals offer.Version. The guarded UPDATE makes the compare-and-swap a
// single atomic statement; no row lock is held across reads.
func (r *OfferRepository) UpdateConditional(ctx context.Context, offer *domain.RideOffer) error {
	query := `
		UPDATE ride_offers
		SET available_seats = $1, passengers = $2, status = $3, fare = $4,
		    version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
	`

	now := time.Now()
	result, err := r.q.ExecContext(ctx, query,
		offer.AvailableSeats,
		pq.Array(offer.Passengers),
		offer.Status,
		offer.Fare,
		now,
		offer.ID,
		offer.Version,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a lost race from a missing record.
		if _, err := r.GetByID(ctx, offer.ID); err != nil {
			return err
		}
		return repository.ErrConflict
	}

	offer.Version++
	offer.UpdatedAt = now
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*domain.RideOffer, error) {
	var offer domain.RideOffer
	var passengers pq.StringArray

	err := row.Scan(
		&offer.ID,
		&offer.DriverID,
		&offer.DriverProfile.Name,
		&offer.DriverProfile.Phone,
		&offer.DriverProfile.Rating,
		&offer.DriverProfile.Vehicle.Model,
		&offer.DriverProfile.Vehicle.Number,
		&offer.DriverProfile.Vehicle.Color,
		&offer.Route.Pickup.Latitude,
		&offer.Route.Pickup.Longitude,
		&offer.Route.Pickup.Address,
		&offer.Route.Dropoff.Latitude,
		&offer.Route.Dropoff.Longitude,
		&offer.Route.Dropoff.Address,
		&offer.DepartureTime,
		&offer.TotalSeats,
		&offer.AvailableSeats,
		&offer.Fare,
		&offer.Status,
		&passengers,
		&offer.Version,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	offer.Passengers = []string(passengers)
	return &offer, nil
}
