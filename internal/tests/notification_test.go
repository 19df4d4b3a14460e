package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/service"
)

func publish(t *testing.T, s *stack, n *domain.Notification) *domain.Notification {
	t.Helper()
	if err := s.notifySvc.Publish(context.Background(), n); err != nil {
		t.Fatalf("failed to publish notification: %v", err)
	}
	return n
}

func TestListUnread_OrderedOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	base := time.Now().Add(-time.Hour)

	// Published out of order on purpose.
	second := publish(t, s, &domain.Notification{Type: domain.NotificationRideAccepted, ToUserID: "rider-a", CreatedAt: base.Add(2 * time.Minute)})
	first := publish(t, s, &domain.Notification{Type: domain.NotificationRideRequest, ToUserID: "rider-a", CreatedAt: base.Add(time.Minute)})
	publish(t, s, &domain.Notification{Type: domain.NotificationRideRejected, ToUserID: "rider-b", CreatedAt: base})

	unread, err := s.notifySvc.ListUnread(ctx, "rider-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unread) != 2 {
		t.Fatalf("expected 2 unread for rider-a, got %d", len(unread))
	}
	if unread[0].ID != first.ID || unread[1].ID != second.ID {
		t.Error("unread not ordered by createdAt ascending")
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	n := publish(t, s, &domain.Notification{Type: domain.NotificationRideRequest, ToUserID: "driver-1"})

	if err := s.notifySvc.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Read notifications drop out of the unread view but are not deleted.
	unread, _ := s.notifySvc.ListUnread(ctx, "driver-1")
	if len(unread) != 0 {
		t.Errorf("expected no unread after MarkRead, got %d", len(unread))
	}
	stored, err := s.notifications.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("notification must survive MarkRead: %v", err)
	}
	if !stored.Read {
		t.Error("notification not flagged read")
	}

	if err := s.notifySvc.MarkRead(ctx, n.ID); err != nil {
		t.Errorf("second MarkRead should be a no-op success: %v", err)
	}

	if err := s.notifySvc.MarkRead(ctx, "no-such-id"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscribe_BacklogThenLive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := newStack()
	base := time.Now().Add(-time.Minute)

	older := publish(t, s, &domain.Notification{Type: domain.NotificationRideRequest, ToUserID: "driver-1", CreatedAt: base})
	newer := publish(t, s, &domain.Notification{Type: domain.NotificationRideRequest, ToUserID: "driver-1", CreatedAt: base.Add(time.Second)})

	stream, stop, err := s.notifySvc.Subscribe(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stop()

	receive := func() *domain.Notification {
		select {
		case n := <-stream:
			return n
		case <-ctx.Done():
			t.Fatal("timed out waiting for notification")
			return nil
		}
	}

	// Backlog arrives first, oldest first.
	if got := receive(); got.ID != older.ID {
		t.Errorf("expected backlog notification %s first, got %s", older.ID, got.ID)
	}
	if got := receive(); got.ID != newer.ID {
		t.Errorf("expected backlog notification %s second, got %s", newer.ID, got.ID)
	}

	// A publish after subscription is pushed live.
	live := publish(t, s, &domain.Notification{Type: domain.NotificationRideAccepted, ToUserID: "driver-1"})
	if got := receive(); got.ID != live.ID {
		t.Errorf("expected live notification %s, got %s", live.ID, got.ID)
	}

	// Other recipients never leak into the stream.
	publish(t, s, &domain.Notification{Type: domain.NotificationRideRejected, ToUserID: "rider-z"})
	select {
	case n := <-stream:
		t.Errorf("received another user's notification: %+v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_SurvivesTransportOutage(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	s.transport.PublishError = errors.New("broker down")

	n := publish(t, s, &domain.Notification{Type: domain.NotificationRideRequest, ToUserID: "driver-1"})

	// The record is durable even though the push failed.
	unread, err := s.notifySvc.ListUnread(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unread) != 1 || unread[0].ID != n.ID {
		t.Fatalf("expected the notification persisted, got %+v", unread)
	}
}

func TestPublish_RequiresRecipient(t *testing.T) {
	s := newStack()
	err := s.notifySvc.Publish(context.Background(), &domain.Notification{Type: domain.NotificationRideRequest})
	if !errors.Is(err, service.ErrInvalidUserID) {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}
