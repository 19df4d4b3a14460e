package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/domain"
)

// BookingRepository is a PostgreSQL implementation of
// repository.BookingRepository. Append-only by construction; there is no
// UPDATE or DELETE statement in this file.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking record.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, ride_id, rider_id, fare_amount, booked_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.RideID,
		booking.RiderID,
		booking.FareAmount,
		booking.BookedAt,
	)

	return err
}

// GetByRide retrieves all bookings recorded against an offer.
func (r *BookingRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `
		SELECT id, ride_id, rider_id, fare_amount, booked_at
		FROM bookings WHERE ride_id = $1 ORDER BY booked_at
	`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.RideID, &b.RiderID, &b.FareAmount, &b.BookedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}
