package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/service"
)

func TestAcceptRequest_NotifiesRider(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	offer := s.seedOffer(t, "driver-1", 2, time.Now().Add(time.Hour))

	result, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-a", RiderProfile: riderProfile("Ravi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	request, err := s.lifecycleSvc.AcceptRequest(ctx, result.Request.ID, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != domain.RequestStatusAccepted {
		t.Errorf("expected accepted, got %s", request.Status)
	}

	// Seat stays reserved; accepting changes no seat counts.
	stored, _ := s.offers.GetByID(ctx, offer.ID)
	if stored.AvailableSeats != 1 || !stored.HasPassenger("rider-a") {
		t.Errorf("accept must not touch seats: seats=%d passengers=%v", stored.AvailableSeats, stored.Passengers)
	}

	unread, err := s.notifications.ListUnread(ctx, "rider-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unread) != 1 || unread[0].Type != domain.NotificationRideAccepted {
		t.Fatalf("expected one RIDE_ACCEPTED notification, got %+v", unread)
	}
	if unread[0].FromUserName != "Asha" {
		t.Errorf("notification should carry the driver name, got %q", unread[0].FromUserName)
	}
}

func TestRejectRequest_ReleasesSeatAndNotifies(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	offer := s.seedOffer(t, "driver-1", 1, time.Now().Add(time.Hour))

	result, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-a", RiderProfile: riderProfile("Ravi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	request, err := s.lifecycleSvc.RejectRequest(ctx, result.Request.ID, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != domain.RequestStatusRejected {
		t.Errorf("expected rejected, got %s", request.Status)
	}

	stored, _ := s.offers.GetByID(ctx, offer.ID)
	if stored.AvailableSeats != 1 || stored.HasPassenger("rider-a") {
		t.Errorf("seat not released on reject: seats=%d passengers=%v", stored.AvailableSeats, stored.Passengers)
	}

	unread, _ := s.notifications.ListUnread(ctx, "rider-a")
	if len(unread) != 1 || unread[0].Type != domain.NotificationRideRejected {
		t.Fatalf("expected one RIDE_REJECTED notification, got %+v", unread)
	}

	// The freed seat is immediately bookable again.
	if _, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-b", RiderProfile: riderProfile("Meera")}); err != nil {
		t.Errorf("released seat should be bookable: %v", err)
	}
}

func TestDecideRequest_Guards(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	offer := s.seedOffer(t, "driver-1", 2, time.Now().Add(time.Hour))

	result, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-a", RiderProfile: riderProfile("Ravi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.lifecycleSvc.AcceptRequest(ctx, result.Request.ID, "someone-else"); !errors.Is(err, service.ErrNotOfferDriver) {
		t.Errorf("expected ErrNotOfferDriver, got %v", err)
	}

	if _, err := s.lifecycleSvc.AcceptRequest(ctx, result.Request.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Accepted requests cannot be rejected; the mutation must not happen.
	if _, err := s.lifecycleSvc.RejectRequest(ctx, result.Request.ID, "driver-1"); !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
	request, _ := s.lifecycleSvc.GetRequest(ctx, result.Request.ID)
	if request.Status != domain.RequestStatusAccepted {
		t.Errorf("failed transition mutated the request: %s", request.Status)
	}
}

func TestOfferTransitions(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	offer := s.seedOffer(t, "driver-1", 2, time.Now().Add(time.Hour))

	// Active offers cannot be completed without starting.
	if _, err := s.lifecycleSvc.CompleteOffer(ctx, offer.ID, "driver-1"); !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}

	if _, err := s.lifecycleSvc.StartOffer(ctx, offer.ID, "someone-else"); !errors.Is(err, service.ErrNotOfferDriver) {
		t.Errorf("expected ErrNotOfferDriver, got %v", err)
	}

	started, err := s.lifecycleSvc.StartOffer(ctx, offer.ID, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != domain.OfferStatusInProgress {
		t.Errorf("expected inProgress, got %s", started.Status)
	}

	completed, err := s.lifecycleSvc.CompleteOffer(ctx, offer.ID, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.Status != domain.OfferStatusCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}

	// Terminal states reject every further move.
	if _, err := s.lifecycleSvc.CancelOffer(ctx, offer.ID, "driver-1"); !errors.Is(err, service.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCancelOffer_CascadesToRequests(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	offer := s.seedOffer(t, "driver-1", 3, time.Now().Add(time.Hour))

	pending, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-a", RiderProfile: riderProfile("Ravi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	accepted, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-b", RiderProfile: riderProfile("Meera")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.lifecycleSvc.AcceptRequest(ctx, accepted.Request.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.lifecycleSvc.CancelOffer(ctx, offer.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{pending.Request.ID, accepted.Request.ID} {
		request, err := s.lifecycleSvc.GetRequest(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if request.Status != domain.RequestStatusCancelled {
			t.Errorf("request %s not cascaded to cancelled: %s", id, request.Status)
		}
	}

	stored, _ := s.offers.GetByID(ctx, offer.ID)
	if stored.Status != domain.OfferStatusCancelled {
		t.Errorf("expected cancelled offer, got %s", stored.Status)
	}
	if stored.AvailableSeats != 3 || len(stored.Passengers) != 0 {
		t.Errorf("seats not released on cascade: seats=%d passengers=%v", stored.AvailableSeats, stored.Passengers)
	}
}

func TestCompleteOffer_SettlesRequests(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	offer := s.seedOffer(t, "driver-1", 3, time.Now().Add(time.Hour))

	accepted, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-a", RiderProfile: riderProfile("Ravi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.lifecycleSvc.AcceptRequest(ctx, accepted.Request.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-b", RiderProfile: riderProfile("Meera")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.lifecycleSvc.StartOffer(ctx, offer.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.lifecycleSvc.CompleteOffer(ctx, offer.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.lifecycleSvc.GetRequest(ctx, accepted.Request.ID)
	if got.Status != domain.RequestStatusCompleted {
		t.Errorf("accepted request should complete with the ride, got %s", got.Status)
	}
	got, _ = s.lifecycleSvc.GetRequest(ctx, pending.Request.ID)
	if got.Status != domain.RequestStatusCancelled {
		t.Errorf("pending request should be cancelled at completion, got %s", got.Status)
	}
}
