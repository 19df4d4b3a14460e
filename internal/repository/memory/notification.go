package memory

import (
	"context"
	"sort"
	"sync"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// NotificationRepository is an in-memory implementation of
// repository.NotificationRepository and repository.UnreadSubscriber.
// Every change to a recipient's unread set is pushed to that recipient's
// live subscribers as the full current set.
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
	subscribers   map[string]map[int]chan []*domain.Notification
	nextSubID     int
}

// NewNotificationRepository creates a new in-memory notification repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{
		notifications: make(map[string]*domain.Notification),
		subscribers:   make(map[string]map[int]chan []*domain.Notification),
	}
}

// Create persists a new notification and notifies the recipient's
// subscribers.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	cp := *n
	r.notifications[n.ID] = &cp
	r.mu.Unlock()

	r.broadcast(n.ToUserID)
	return nil
}

// GetByID retrieves a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

// ListUnread retrieves the recipient's unread notifications ordered by
// creation time ascending, ties broken by ID for determinism.
func (r *NotificationRepository) ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.unreadLocked(userID), nil
}

// MarkRead flips the read flag. Marking an already-read notification is a
// no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	n, ok := r.notifications[id]
	if !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	changed := !n.Read
	n.Read = true
	userID := n.ToUserID
	r.mu.Unlock()

	if changed {
		r.broadcast(userID)
	}
	return nil
}

// SubscribeUnread returns a channel that receives the recipient's current
// unread set on every change, starting with the set as of subscription.
// The cancel function releases the subscription and closes the channel.
func (r *NotificationRepository) SubscribeUnread(ctx context.Context, userID string) (<-chan []*domain.Notification, func()) {
	ch := make(chan []*domain.Notification, 16)

	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	if r.subscribers[userID] == nil {
		r.subscribers[userID] = make(map[int]chan []*domain.Notification)
	}
	r.subscribers[userID][id] = ch
	initial := r.unreadLocked(userID)
	r.mu.Unlock()

	ch <- initial

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if subs, ok := r.subscribers[userID]; ok {
			if c, ok := subs[id]; ok {
				delete(subs, id)
				close(c)
			}
		}
	}
	return ch, cancel
}

// unreadLocked collects the unread set for a recipient. Caller holds at
// least a read lock.
func (r *NotificationRepository) unreadLocked(userID string) []*domain.Notification {
	var result []*domain.Notification
	for _, n := range r.notifications {
		if n.ToUserID == userID && !n.Read {
			cp := *n
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// broadcast pushes the current unread set to the recipient's subscribers.
// Slow subscribers drop intermediate snapshots rather than block writers.
func (r *NotificationRepository) broadcast(userID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.subscribers[userID]
	if len(subs) == 0 {
		return
	}
	current := r.unreadLocked(userID)
	for _, ch := range subs {
		select {
		case ch <- current:
		default:
		}
	}
}
