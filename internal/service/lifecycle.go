package service

import (
	"context"
	"errors"
	"log/slog"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// LifecycleService owns the state machines of offers and their requests.
// Seat accounting is never touched here directly; releases are delegated
// to the BookingService so the conditional-update path stays the single
// writer of AvailableSeats and Passengers.
type LifecycleService struct {
	offerRepo   repository.OfferRepository
	requestRepo repository.RequestRepository
	booking     *BookingService
	notifier    *NotificationService
	logger      *slog.Logger
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	offerRepo repository.OfferRepository,
	requestRepo repository.RequestRepository,
	booking *BookingService,
	notifier *NotificationService,
	logger *slog.Logger,
) *LifecycleService {
	return &LifecycleService{
		offerRepo:   offerRepo,
		requestRepo: requestRepo,
		booking:     booking,
		notifier:    notifier,
		logger:      logger,
	}
}

// AcceptRequest transitions a pending request to accepted and notifies
// the rider. The seat was already reserved at booking time, so seat
// counts are not touched. driverID guards against anyone but the offer's
// driver acting on it; pass the verified caller id.
func (s *LifecycleService) AcceptRequest(ctx context.Context, requestID, driverID string) (*domain.RideRequest, error) {
	request, offer, err := s.loadRequestAndOffer(ctx, requestID, driverID)
	if err != nil {
		return nil, err
	}

	if offer.Status == domain.OfferStatusCancelled {
		return nil, ErrInvalidStateTransition
	}
	if !request.CanTransitionTo(domain.RequestStatusAccepted) {
		return nil, ErrInvalidStateTransition
	}

	if err := s.requestRepo.UpdateStatus(ctx, request.ID, domain.RequestStatusAccepted); err != nil {
		return nil, err
	}
	request.Status = domain.RequestStatusAccepted

	if err := s.notifier.Publish(ctx, requestAcceptedNotification(offer, request)); err != nil {
		s.logger.Warn("rider notification failed", "request_id", request.ID, "error", err)
	}

	s.logger.Info("request accepted", "request_id", request.ID, "ride_id", offer.ID)
	return request, nil
}

// RejectRequest transitions a pending request to rejected, releases the
// rider's seat through the BookingService, and notifies the rider.
func (s *LifecycleService) RejectRequest(ctx context.Context, requestID, driverID string) (*domain.RideRequest, error) {
	request, offer, err := s.loadRequestAndOffer(ctx, requestID, driverID)
	if err != nil {
		return nil, err
	}

	if !request.CanTransitionTo(domain.RequestStatusRejected) {
		return nil, ErrInvalidStateTransition
	}

	if err := s.requestRepo.UpdateStatus(ctx, request.ID, domain.RequestStatusRejected); err != nil {
		return nil, err
	}
	request.Status = domain.RequestStatusRejected

	if err := s.booking.CancelBooking(ctx, request.RideID, request.RiderID); err != nil {
		return nil, err
	}

	if err := s.notifier.Publish(ctx, requestRejectedNotification(offer, request)); err != nil {
		s.logger.Warn("rider notification failed", "request_id", request.ID, "error", err)
	}

	s.logger.Info("request rejected", "request_id", request.ID, "ride_id", offer.ID)
	return request, nil
}

// GetRequest retrieves a request by ID.
func (s *LifecycleService) GetRequest(ctx context.Context, id string) (*domain.RideRequest, error) {
	if id == "" {
		return nil, ErrInvalidRequestID
	}
	return s.requestRepo.GetByID(ctx, id)
}

// StartOffer moves an active offer to inProgress.
func (s *LifecycleService) StartOffer(ctx context.Context, rideID, driverID string) (*domain.RideOffer, error) {
	return s.transitionOffer(ctx, rideID, driverID, domain.OfferStatusInProgress)
}

// CompleteOffer moves an inProgress offer to completed. Accepted requests
// ride along to completed; pending ones are cancelled and their seats
// released.
func (s *LifecycleService) CompleteOffer(ctx context.Context, rideID, driverID string) (*domain.RideOffer, error) {
	offer, err := s.transitionOffer(ctx, rideID, driverID, domain.OfferStatusCompleted)
	if err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.GetByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		switch request.Status {
		case domain.RequestStatusAccepted:
			if err := s.requestRepo.UpdateStatus(ctx, request.ID, domain.RequestStatusCompleted); err != nil {
				return nil, err
			}
		case domain.RequestStatusPending:
			if err := s.requestRepo.UpdateStatus(ctx, request.ID, domain.RequestStatusCancelled); err != nil {
				return nil, err
			}
			if err := s.booking.CancelBooking(ctx, rideID, request.RiderID); err != nil {
				return nil, err
			}
		}
	}
	return offer, nil
}

// CancelOffer moves an offer to cancelled from active or inProgress and
// cascades: every non-terminal request under it is force-cancelled and
// its seat released.
func (s *LifecycleService) CancelOffer(ctx context.Context, rideID, driverID string) (*domain.RideOffer, error) {
	offer, err := s.transitionOffer(ctx, rideID, driverID, domain.OfferStatusCancelled)
	if err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.GetByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		if request.Status.Terminal() {
			continue
		}
		if err := s.requestRepo.UpdateStatus(ctx, request.ID, domain.RequestStatusCancelled); err != nil {
			return nil, err
		}
		if err := s.booking.CancelBooking(ctx, rideID, request.RiderID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("offer cancelled", "ride_id", rideID, "cascaded", len(requests))
	return offer, nil
}

// transitionOffer applies a status move through the conditional-update
// path, retrying on conflicts with concurrent seat mutations. The state
// machine is re-validated against each fresh snapshot, so an illegal move
// never commits.
func (s *LifecycleService) transitionOffer(ctx context.Context, rideID, driverID string, next domain.OfferStatus) (*domain.RideOffer, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	for {
		offer, err := s.offerRepo.GetByID(ctx, rideID)
		if err != nil {
			return nil, err
		}

		if driverID != "" && offer.DriverID != driverID {
			return nil, ErrNotOfferDriver
		}
		if !offer.CanTransitionTo(next) {
			return nil, ErrInvalidStateTransition
		}

		offer.Status = next
		err = s.offerRepo.UpdateConditional(ctx, offer)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return offer, nil
	}
}

// loadRequestAndOffer fetches a request with its parent offer and checks
// the caller is the offer's driver.
func (s *LifecycleService) loadRequestAndOffer(ctx context.Context, requestID, driverID string) (*domain.RideRequest, *domain.RideOffer, error) {
	if requestID == "" {
		return nil, nil, ErrInvalidRequestID
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	offer, err := s.offerRepo.GetByID(ctx, request.RideID)
	if err != nil {
		return nil, nil, err
	}

	if driverID != "" && offer.DriverID != driverID {
		return nil, nil, ErrNotOfferDriver
	}
	return request, offer, nil
}
