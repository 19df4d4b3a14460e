package tests

import (
	"context"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/geo"
	"carpool/internal/service"
)

func TestFindCandidates_ProximityFilter(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	departure := time.Now().Add(time.Hour)

	// Offer near the query route.
	near := s.seedOffer(t, "driver-near", 2, departure)

	// Offer with a pickup far outside the threshold.
	far, err := s.offerSvc.CreateOffer(ctx, service.CreateOfferInput{
		DriverID:      "driver-far",
		DriverProfile: domain.DriverProfile{Name: "Far"},
		Pickup:        domain.Location{Latitude: 28.90, Longitude: 77.50, Address: "Ghaziabad"},
		Dropoff:       domain.Location{Latitude: 28.6315, Longitude: 77.2167, Address: "Connaught Place"},
		DepartureTime: departure,
		TotalSeats:    2,
		Fare:          90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	query := service.SearchInput{
		Pickup:    domain.Location{Latitude: 28.591, Longitude: 77.045},
		Dropoff:   domain.Location{Latitude: 28.632, Longitude: 77.218},
		NotBefore: time.Now(),
	}

	candidates, err := s.matchingSvc.FindCandidates(ctx, query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 1 || candidates[0].ID != near.ID {
		t.Fatalf("expected only the nearby offer, got %d candidates", len(candidates))
	}

	// The filter never admits an offer outside the threshold.
	for _, c := range candidates {
		if c.ID == far.ID {
			t.Error("far offer leaked through the proximity filter")
		}
		if geo.DistanceKm(c.Route.Pickup, query.Pickup) > service.DefaultMaxDistanceKm {
			t.Error("candidate pickup outside max distance")
		}
		if geo.DistanceKm(c.Route.Dropoff, query.Dropoff) > service.DefaultMaxDistanceKm {
			t.Error("candidate dropoff outside max distance")
		}
	}
}

func TestFindCandidates_FiltersDepartedAndInactive(t *testing.T) {
	ctx := context.Background()
	s := newStack()

	s.seedOffer(t, "driver-soon", 2, time.Now().Add(30*time.Minute))
	cancelled := s.seedOffer(t, "driver-cancelled", 2, time.Now().Add(time.Hour))
	if _, err := s.lifecycleSvc.CancelOffer(ctx, cancelled.ID, "driver-cancelled"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	candidates, err := s.matchingSvc.FindCandidates(ctx, service.SearchInput{
		Pickup:    domain.Location{Latitude: 28.59, Longitude: 77.04},
		Dropoff:   domain.Location{Latitude: 28.6315, Longitude: 77.2167},
		NotBefore: time.Now().Add(45 * time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// driver-soon departs before NotBefore, driver-cancelled is not
	// active: nothing qualifies. Empty is a result, not an error.
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestFindCandidates_OrderedByDepartureThenID(t *testing.T) {
	ctx := context.Background()
	s := newStack()

	late := s.seedOffer(t, "driver-late", 2, time.Now().Add(3*time.Hour))
	early := s.seedOffer(t, "driver-early", 2, time.Now().Add(1*time.Hour))

	candidates, err := s.matchingSvc.FindCandidates(ctx, service.SearchInput{
		Pickup:    domain.Location{Latitude: 28.59, Longitude: 77.04},
		Dropoff:   domain.Location{Latitude: 28.6315, Longitude: 77.2167},
		NotBefore: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != early.ID || candidates[1].ID != late.ID {
		t.Error("candidates not ordered by departure time ascending")
	}

	for i := 1; i < len(candidates); i++ {
		prev, cur := candidates[i-1], candidates[i]
		if cur.DepartureTime.Before(prev.DepartureTime) {
			t.Error("departure ordering violated")
		}
		if cur.DepartureTime.Equal(prev.DepartureTime) && cur.ID < prev.ID {
			t.Error("tie-break by id violated")
		}
	}
}

func TestFindCandidates_SeatCountFilter(t *testing.T) {
	ctx := context.Background()
	s := newStack()
	offer := s.seedOffer(t, "driver-1", 2, time.Now().Add(time.Hour))

	if _, err := s.bookingSvc.RequestSeat(ctx, service.RequestSeatInput{RideID: offer.ID, RiderID: "rider-a", RiderProfile: riderProfile("Ravi")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One seat left; a party of two should not see the offer.
	candidates, err := s.matchingSvc.FindCandidates(ctx, service.SearchInput{
		Pickup:    domain.Location{Latitude: 28.59, Longitude: 77.04},
		Dropoff:   domain.Location{Latitude: 28.6315, Longitude: 77.2167},
		NotBefore: time.Now(),
		Seats:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates for a party of two, got %d", len(candidates))
	}
}
