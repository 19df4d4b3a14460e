package tests

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository/memory"
	"carpool/internal/service"
)

// inProcTransport is an in-process implementation of service.Transport.
// It mirrors the Redis pub/sub transport closely enough for tests:
// publish fans out to whoever is subscribed right now, nothing more.
type inProcTransport struct {
	mu          sync.RWMutex
	subscribers map[string]map[int]chan *domain.Notification
	nextID      int

	// PublishError lets tests simulate a transport outage.
	PublishError error
}

func newInProcTransport() *inProcTransport {
	return &inProcTransport{
		subscribers: make(map[string]map[int]chan *domain.Notification),
	}
}

func (t *inProcTransport) Publish(ctx context.Context, n *domain.Notification) error {
	if t.PublishError != nil {
		return t.PublishError
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ch := range t.subscribers[n.ToUserID] {
		cp := *n
		select {
		case ch <- &cp:
		default:
		}
	}
	return nil
}

func (t *inProcTransport) Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error) {
	ch := make(chan *domain.Notification, 32)

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	if t.subscribers[userID] == nil {
		t.subscribers[userID] = make(map[int]chan *domain.Notification)
	}
	t.subscribers[userID][id] = ch
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if subs, ok := t.subscribers[userID]; ok {
			if c, ok := subs[id]; ok {
				delete(subs, id)
				close(c)
			}
		}
	}
	return ch, cancel, nil
}

// stack bundles the full service graph over in-memory repositories.
type stack struct {
	offers        *memory.OfferRepository
	requests      *memory.RequestRepository
	bookings      *memory.BookingRepository
	notifications *memory.NotificationRepository
	transport     *inProcTransport

	offerSvc     *service.OfferService
	matchingSvc  *service.MatchingService
	bookingSvc   *service.BookingService
	lifecycleSvc *service.LifecycleService
	notifySvc    *service.NotificationService
}

func newStack() *stack {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	offers := memory.NewOfferRepository()
	requests := memory.NewRequestRepository()
	bookings := memory.NewBookingRepository()
	notifications := memory.NewNotificationRepository()
	transport := newInProcTransport()

	notifySvc := service.NewNotificationService(notifications, transport, logger)
	bookingSvc := service.NewBookingService(offers, requests, bookings, notifySvc, logger)

	return &stack{
		offers:        offers,
		requests:      requests,
		bookings:      bookings,
		notifications: notifications,
		transport:     transport,
		offerSvc:      service.NewOfferService(offers, logger),
		matchingSvc:   service.NewMatchingService(offers, logger),
		bookingSvc:    bookingSvc,
		lifecycleSvc:  service.NewLifecycleService(offers, requests, bookingSvc, notifySvc, logger),
		notifySvc:     notifySvc,
	}
}

// seedOffer publishes an offer through the service so defaults and
// validation run exactly as in production.
func (s *stack) seedOffer(t testingT, driverID string, seats int, departure time.Time) *domain.RideOffer {
	t.Helper()
	offer, err := s.offerSvc.CreateOffer(context.Background(), service.CreateOfferInput{
		DriverID: driverID,
		DriverProfile: domain.DriverProfile{
			Name:   "Asha",
			Phone:  "+91-98xxxxxx01",
			Rating: 4.7,
			Vehicle: domain.VehicleDetails{
				Model:  "Swift",
				Number: "DL-3C-1234",
				Color:  "white",
			},
		},
		Pickup:        domain.Location{Latitude: 28.59, Longitude: 77.04, Address: "Dwarka Sector 10"},
		Dropoff:       domain.Location{Latitude: 28.6315, Longitude: 77.2167, Address: "Connaught Place"},
		DepartureTime: departure,
		TotalSeats:    seats,
		Fare:          120,
	})
	if err != nil {
		t.Fatalf("failed to seed offer: %v", err)
	}
	return offer
}

func riderProfile(name string) domain.RiderProfile {
	return domain.RiderProfile{Name: name, Phone: "+91-98xxxxxx02", Rating: 4.5}
}

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Fatalf(format string, args ...any)
	Helper()
}
