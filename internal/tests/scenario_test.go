package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// TestCommuteFlow walks the full commute story: a driver publishes a
// two-seat offer, nearby riders find and fill it, a third rider bounces
// off the full ride, and a rejection frees the seat for them.
func TestCommuteFlow(t *testing.T) {
	ctx := context.Background()
	s := newStack()

	offer := s.seedOffer(t, "driver-1", 2, time.Now().Add(2*time.Hour))

	// A rider a few hundred meters away finds the offer.
	candidates, err := s.matchingSvc.FindCandidates(ctx, service.SearchInput{
		Pickup:    domain.Location{Latitude: 28.591, Longitude: 77.045},
		Dropoff:   domain.Location{Latitude: 28.632, Longitude: 77.218},
		NotBefore: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != offer.ID {
		t.Fatalf("rider should find the offer, got %d candidates", len(candidates))
	}

	// Riders A and B take the two seats.
	bookingA, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-a", RiderProfile: riderProfile("Ravi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bookingB, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-b", RiderProfile: riderProfile("Meera")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rider C is out of luck.
	if _, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-c", RiderProfile: riderProfile("Kiran")}); !errors.Is(err, service.ErrSeatUnavailable) {
		t.Fatalf("full ride: expected ErrSeatUnavailable, got %v", err)
	}

	// The driver saw both seat requests.
	driverUnread, _ := s.notifications.ListUnread(ctx, "driver-1")
	if len(driverUnread) != 2 {
		t.Fatalf("driver should have 2 RIDE_REQUEST notifications, got %d", len(driverUnread))
	}

	// Accept A, reject B. B's seat frees up and B hears about it.
	if _, err := s.lifecycleSvc.AcceptRequest(ctx, bookingA.Request.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.lifecycleSvc.RejectRequest(ctx, bookingB.Request.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unreadB, _ := s.notifications.ListUnread(ctx, "rider-b")
	if len(unreadB) != 1 || unreadB[0].Type != domain.NotificationRideRejected {
		t.Fatalf("rider B should hold a RIDE_REJECTED notification, got %+v", unreadB)
	}

	// Rider C retries and gets the freed seat.
	bookingC, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-c", RiderProfile: riderProfile("Kiran")})
	if err != nil {
		t.Fatalf("freed seat should be bookable: %v", err)
	}
	if _, err := s.lifecycleSvc.AcceptRequest(ctx, bookingC.Request.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The ride runs to completion and settles both accepted requests.
	if _, err := s.lifecycleSvc.StartOffer(ctx, offer.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.lifecycleSvc.CompleteOffer(ctx, offer.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{bookingA.Request.ID, bookingC.Request.ID} {
		request, _ := s.lifecycleSvc.GetRequest(ctx, id)
		if request.Status != domain.RequestStatusCompleted {
			t.Errorf("request %s should be completed, got %s", id, request.Status)
		}
	}

	stored, _ := s.offers.GetByID(ctx, offer.ID)
	if !stored.SeatInvariantHolds() {
		t.Error("seat invariant violated at end of flow")
	}
}
