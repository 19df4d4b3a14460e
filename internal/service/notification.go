package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/observability"
	"carpool/internal/repository"
)

// Transport delivers published notifications to currently connected
// subscribers. Durability is not its job; the repository keeps every
// notification queryable for recipients who were offline.
type Transport interface {
	Publish(ctx context.Context, n *domain.Notification) error
	Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error)
}

// NotificationService routes asynchronous events between the two parties
// of a ride: persist first, then push to whoever is listening.
type NotificationService struct {
	repo      repository.NotificationRepository
	transport Transport
	logger    *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, transport Transport, logger *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, transport: transport, logger: logger}
}

// Publish persists the notification unread and pushes it to live
// subscribers. A transport failure is logged, not returned: the record is
// durable and the recipient picks it up on the next subscription.
func (s *NotificationService) Publish(ctx context.Context, n *domain.Notification) error {
	if n.ToUserID == "" {
		return ErrInvalidUserID
	}

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.Read = false

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	observability.NotificationsPublishedTotal.WithLabelValues(string(n.Type)).Inc()

	if s.transport != nil {
		if err := s.transport.Publish(ctx, n); err != nil {
			s.logger.Warn("notification push failed, recipient will catch up on reconnect",
				"notification_id", n.ID,
				"to_user_id", n.ToUserID,
				"error", err,
			)
		}
	}
	return nil
}

// Subscribe returns a live stream of the recipient's notifications: the
// unread backlog first, in createdAt order, then pushes as they are
// published. The cancel function tears the stream down.
func (s *NotificationService) Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error) {
	if userID == "" {
		return nil, nil, ErrInvalidUserID
	}

	// Attach to the transport before reading the backlog so nothing
	// published in between can be missed; duplicates from the overlap
	// are filtered by ID below.
	var (
		live       <-chan *domain.Notification
		cancelLive func()
	)
	if s.transport != nil {
		var err error
		live, cancelLive, err = s.transport.Subscribe(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
	}

	backlog, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		if cancelLive != nil {
			cancelLive()
		}
		return nil, nil, err
	}

	out := make(chan *domain.Notification, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		seen := make(map[string]struct{})

		for _, n := range backlog {
			seen[n.ID] = struct{}{}
			select {
			case out <- n:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
		if live == nil {
			<-done
			return
		}
		for {
			select {
			case n, ok := <-live:
				if !ok {
					return
				}
				if _, dup := seen[n.ID]; dup {
					continue
				}
				seen[n.ID] = struct{}{}
				select {
				case out <- n:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		close(done)
		if cancelLive != nil {
			cancelLive()
		}
	}
	return out, cancel, nil
}

// ListUnread returns the recipient's unread notifications, oldest first.
func (s *NotificationService) ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListUnread(ctx, userID)
}

// MarkRead flips a notification to read. Idempotent.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidRequestID
	}
	return s.repo.MarkRead(ctx, id)
}

// rideDetailsFor builds the denormalized snapshot a notification carries.
func rideDetailsFor(offer *domain.RideOffer, passengerName string) domain.RideDetails {
	return domain.RideDetails{
		Pickup:        offer.Route.Pickup.Address,
		Dropoff:       offer.Route.Dropoff.Address,
		Fare:          offer.Fare,
		DepartureTime: offer.DepartureTime.Format(time.RFC3339),
		PassengerName: passengerName,
	}
}

// seatRequestedNotification tells the driver a rider wants a seat.
func seatRequestedNotification(offer *domain.RideOffer, rider *domain.RideRequest) *domain.Notification {
	return &domain.Notification{
		Type:         domain.NotificationRideRequest,
		RideID:       offer.ID,
		FromUserID:   rider.RiderID,
		FromUserName: rider.RiderProfile.Name,
		ToUserID:     offer.DriverID,
		Message:      fmt.Sprintf("%s requested a seat on your ride to %s", rider.RiderProfile.Name, offer.Route.Dropoff.Address),
		RideDetails:  rideDetailsFor(offer, rider.RiderProfile.Name),
	}
}

// requestAcceptedNotification tells the rider the driver accepted.
func requestAcceptedNotification(offer *domain.RideOffer, rider *domain.RideRequest) *domain.Notification {
	return &domain.Notification{
		Type:         domain.NotificationRideAccepted,
		RideID:       offer.ID,
		FromUserID:   offer.DriverID,
		FromUserName: offer.DriverProfile.Name,
		ToUserID:     rider.RiderID,
		Message:      fmt.Sprintf("%s accepted your seat request for the ride to %s", offer.DriverProfile.Name, offer.Route.Dropoff.Address),
		RideDetails:  rideDetailsFor(offer, rider.RiderProfile.Name),
	}
}

// requestRejectedNotification tells the rider the driver rejected.
func requestRejectedNotification(offer *domain.RideOffer, rider *domain.RideRequest) *domain.Notification {
	return &domain.Notification{
		Type:         domain.NotificationRideRejected,
		RideID:       offer.ID,
		FromUserID:   offer.DriverID,
		FromUserName: offer.DriverProfile.Name,
		ToUserID:     rider.RiderID,
		Message:      fmt.Sprintf("%s declined your seat request for the ride to %s", offer.DriverProfile.Name, offer.Route.Dropoff.Address),
		RideDetails:  rideDetailsFor(offer, rider.RiderProfile.Name),
	}
}
