package domain

import "testing"

func TestOfferStatusMachine(t *testing.T) {
	cases := []struct {
		from    OfferStatus
		to      OfferStatus
		allowed bool
	}{
		{OfferStatusActive, OfferStatusInProgress, true},
		{OfferStatusActive, OfferStatusCancelled, true},
		{OfferStatusActive, OfferStatusCompleted, false},
		{OfferStatusInProgress, OfferStatusCompleted, true},
		{OfferStatusInProgress, OfferStatusCancelled, true},
		{OfferStatusInProgress, OfferStatusActive, false},
		{OfferStatusCompleted, OfferStatusCancelled, false},
		{OfferStatusCancelled, OfferStatusActive, false},
	}

	for _, tc := range cases {
		o := &RideOffer{Status: tc.from}
		if got := o.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestRequestStatusMachine(t *testing.T) {
	cases := []struct {
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{RequestStatusPending, RequestStatusAccepted, true},
		{RequestStatusPending, RequestStatusRejected, true},
		{RequestStatusPending, RequestStatusCancelled, true},
		{RequestStatusPending, RequestStatusCompleted, false},
		{RequestStatusAccepted, RequestStatusCompleted, true},
		{RequestStatusAccepted, RequestStatusCancelled, true},
		{RequestStatusAccepted, RequestStatusRejected, false},
		{RequestStatusRejected, RequestStatusAccepted, false},
		{RequestStatusCompleted, RequestStatusCancelled, false},
		{RequestStatusCancelled, RequestStatusPending, false},
	}

	for _, tc := range cases {
		r := &RideRequest{Status: tc.from}
		if got := r.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestSeatInvariantHolds(t *testing.T) {
	cases := []struct {
		name  string
		offer RideOffer
		want  bool
	}{
		{"fresh offer", RideOffer{TotalSeats: 3, AvailableSeats: 3}, true},
		{"one booked", RideOffer{TotalSeats: 3, AvailableSeats: 2, Passengers: []string{"a"}}, true},
		{"full", RideOffer{TotalSeats: 2, AvailableSeats: 0, Passengers: []string{"a", "b"}}, true},
		{"negative seats", RideOffer{TotalSeats: 2, AvailableSeats: -1, Passengers: []string{"a", "b", "c"}}, false},
		{"over capacity", RideOffer{TotalSeats: 2, AvailableSeats: 3}, false},
		{"count mismatch", RideOffer{TotalSeats: 3, AvailableSeats: 2}, false},
	}

	for _, tc := range cases {
		if got := tc.offer.SeatInvariantHolds(); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClone_IsolatesPassengers(t *testing.T) {
	orig := &RideOffer{TotalSeats: 2, AvailableSeats: 1, Passengers: []string{"a"}}
	cp := orig.Clone()
	cp.Passengers[0] = "b"
	cp.Passengers = append(cp.Passengers, "c")

	if orig.Passengers[0] != "a" || len(orig.Passengers) != 1 {
		t.Errorf("clone shares passenger backing array: %v", orig.Passengers)
	}
}
