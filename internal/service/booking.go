package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/observability"
	"carpool/internal/repository"
)

// maxBookingAttempts bounds the conditional-update retry loop so heavy
// contention on one ride degrades into ErrSeatUnavailable instead of
// spinning.
const maxBookingAttempts = 3

// BookingService owns the seat-allocation protocol. It is the only
// component allowed to mutate AvailableSeats and Passengers, and it does
// so exclusively through the repository's conditional update, which is
// what keeps concurrent bookings from overselling the ride.
type BookingService struct {
	offerRepo   repository.OfferRepository
	requestRepo repository.RequestRepository
	bookingRepo repository.BookingRepository
	notifier    *NotificationService
	logger      *slog.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	offerRepo repository.OfferRepository,
	requestRepo repository.RequestRepository,
	bookingRepo repository.BookingRepository,
	notifier *NotificationService,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		offerRepo:   offerRepo,
		requestRepo: requestRepo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// RequestSeatInput contains the parameters for booking a seat. The rider
// profile is an identity-layer snapshot, stored on the request.
type RequestSeatInput struct {
	RideID       string
	RiderID      string
	RiderProfile domain.RiderProfile
}

// BookingResult is returned on a successful seat allocation.
type BookingResult struct {
	Offer   *domain.RideOffer
	Request *domain.RideRequest
	Booking *domain.Booking
}

// RequestSeat reserves one seat on the offer for the rider.
//
// Protocol: read a snapshot, validate, then attempt a conditional update
// that decrements AvailableSeats and appends the rider atomically. A
// conflict means another booking or cancellation landed first; retry from
// a fresh snapshot up to maxBookingAttempts, then give up with
// ErrSeatUnavailable. On success a pending RideRequest, an immutable
// Booking record, and a RIDE_REQUEST notification to the driver are
// created.
func (s *BookingService) RequestSeat(ctx context.Context, input RequestSeatInput) (*BookingResult, error) {
	if input.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if input.RiderID == "" {
		return nil, ErrInvalidRiderID
	}

	for attempt := 0; attempt < maxBookingAttempts; attempt++ {
		offer, err := s.offerRepo.GetByID(ctx, input.RideID)
		if err != nil {
			return nil, err
		}

		if offer.DriverID == input.RiderID {
			return nil, ErrOwnOffer
		}
		if offer.Status != domain.OfferStatusActive {
			return nil, ErrOfferNotActive
		}
		if offer.HasPassenger(input.RiderID) {
			return nil, ErrAlreadyBooked
		}
		if offer.AvailableSeats <= 0 {
			observability.SeatUnavailableTotal.Inc()
			return nil, ErrSeatUnavailable
		}

		offer.AvailableSeats--
		offer.Passengers = append(offer.Passengers, input.RiderID)

		err = s.offerRepo.UpdateConditional(ctx, offer)
		if errors.Is(err, repository.ErrConflict) {
			observability.BookingConflictsTotal.Inc()
			s.logger.Debug("booking lost conditional update, retrying",
				"ride_id", input.RideID,
				"rider_id", input.RiderID,
				"attempt", attempt+1,
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		return s.commitBooking(ctx, offer, input)
	}

	observability.SeatUnavailableTotal.Inc()
	s.logger.Info("booking retries exhausted",
		"ride_id", input.RideID,
		"rider_id", input.RiderID,
	)
	return nil, ErrSeatUnavailable
}

// commitBooking records the request and booking for an already-reserved
// seat and notifies the driver.
func (s *BookingService) commitBooking(ctx context.Context, offer *domain.RideOffer, input RequestSeatInput) (*BookingResult, error) {
	now := time.Now()
	request := &domain.RideRequest{
		ID:            uuid.New().String(),
		RideID:        offer.ID,
		RiderID:       input.RiderID,
		RiderProfile:  input.RiderProfile,
		Status:        domain.RequestStatusPending,
		Fare:          offer.Fare,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:         uuid.New().String(),
		RideID:     offer.ID,
		RiderID:    input.RiderID,
		FareAmount: offer.Fare,
		BookedAt:   now,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	observability.BookingsTotal.Inc()
	s.logger.Info("seat booked",
		"ride_id", offer.ID,
		"rider_id", input.RiderID,
		"seats_left", offer.AvailableSeats,
	)

	if err := s.notifier.Publish(ctx, seatRequestedNotification(offer, request)); err != nil {
		// The seat is committed; a lost notification must not unwind it.
		s.logger.Warn("driver notification failed", "ride_id", offer.ID, "error", err)
	}

	return &BookingResult{Offer: offer, Request: request, Booking: booking}, nil
}

// RideBookings returns the append-only booking history recorded against
// an offer, oldest first.
func (s *BookingService) RideBookings(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if _, err := s.offerRepo.GetByID(ctx, rideID); err != nil {
		return nil, err
	}
	return s.bookingRepo.GetByRide(ctx, rideID)
}

// RiderRequest returns the rider's most recent request on the offer, so a
// rider can recover their request id after losing the booking response.
func (s *BookingService) RiderRequest(ctx context.Context, rideID, riderID string) (*domain.RideRequest, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.requestRepo.GetByRideAndRider(ctx, rideID, riderID)
}

// CancelBooking releases the rider's seat: increments AvailableSeats and
// removes the rider from Passengers through the same conditional-update
// path. Idempotent; if the rider holds no seat the call is a no-op. It
// only fails if the ride record itself is missing, so conflicts are
// retried until the release lands.
func (s *BookingService) CancelBooking(ctx context.Context, rideID, riderID string) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if riderID == "" {
		return ErrInvalidRiderID
	}

	for {
		offer, err := s.offerRepo.GetByID(ctx, rideID)
		if err != nil {
			return err
		}

		if !offer.HasPassenger(riderID) {
			return nil
		}

		offer.AvailableSeats++
		offer.Passengers = slices.DeleteFunc(offer.Passengers, func(id string) bool {
			return id == riderID
		})

		err = s.offerRepo.UpdateConditional(ctx, offer)
		if errors.Is(err, repository.ErrConflict) {
			observability.BookingConflictsTotal.Inc()
			continue
		}
		if err != nil {
			return err
		}

		s.logger.Info("seat released",
			"ride_id", rideID,
			"rider_id", riderID,
			"seats_left", offer.AvailableSeats,
		)
		return nil
	}
}
