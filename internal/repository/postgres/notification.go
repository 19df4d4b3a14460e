package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository. Durable storage makes notifications
// created while a recipient is offline queryable on the next subscription.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

const notificationColumns = `id, type, ride_id, from_user_id, from_user_name, to_user_id, message,
	detail_pickup, detail_dropoff, detail_fare, detail_departure, detail_passenger,
	read, created_at`

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.Type,
		n.RideID,
		n.FromUserID,
		n.FromUserName,
		n.ToUserID,
		n.Message,
		n.RideDetails.Pickup,
		n.RideDetails.Dropoff,
		n.RideDetails.Fare,
		n.RideDetails.DepartureTime,
		n.RideDetails.PassengerName,
		n.Read,
		n.CreatedAt,
	)

	return err
}

// GetByID retrieves a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// ListUnread retrieves the recipient's unread notifications ordered by
// creation time ascending.
func (r *NotificationRepository) ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + ` FROM notifications
		WHERE to_user_id = $1 AND read = FALSE
		ORDER BY created_at, id
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips the read flag. Already-read rows match the WHERE clause,
// so repeating the call is a harmless no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
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

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification

	err := row.Scan(
		&n.ID,
		&n.Type,
		&n.RideID,
		&n.FromUserID,
		&n.FromUserName,
		&n.ToUserID,
		&n.Message,
		&n.RideDetails.Pickup,
		&n.RideDetails.Dropoff,
		&n.RideDetails.Fare,
		&n.RideDetails.DepartureTime,
		&n.RideDetails.PassengerName,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
