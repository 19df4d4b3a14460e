package repository

import (
	"context"

	"carpool/internal/domain"
)

// NotificationRepository defines the persistence operations for
// notifications. Records are write-once; only the read flag flips.
type NotificationRepository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *domain.Notification) error

	// GetByID retrieves a notification by ID.
	GetByID(ctx context.Context, id string) (*domain.Notification, error)

	// ListUnread retrieves the recipient's unread notifications ordered
	// by creation time ascending.
	ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error)

	// MarkRead flips the read flag. Idempotent; marking an already-read
	// notification is a no-op.
	MarkRead(ctx context.Context, id string) error
}

// UnreadSubscriber is implemented by stores that can push the current
// unread set for a recipient whenever it changes. The returned cancel
// function must be called to release the subscription.
//
// The memory adapter implements it for single-process deployments and
// tests; the production path delivers live updates through the
// notification transport, with the repository supplying only the durable
// unread backlog on (re)connect.
type UnreadSubscriber interface {
	SubscribeUnread(ctx context.Context, userID string) (<-chan []*domain.Notification, func())
}
