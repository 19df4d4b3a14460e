package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "carpool", Name: "bookings_total",
		Help: "Total number of committed seat bookings",
	})
	BookingConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "carpool", Name: "booking_conflicts_total",
		Help: "Conditional-update conflicts observed during seat booking",
	})
	SeatUnavailableTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "carpool", Name: "seat_unavailable_total",
		Help: "Booking attempts that failed with no seat available",
	})
	NotificationsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carpool", Name: "notifications_published_total",
			Help: "Notifications published, by type",
		},
		[]string{"type"},
	)
	SearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "carpool", Name: "search_latency_seconds",
		Help:    "Candidate search latency distribution",
		Buckets: prometheus.DefBuckets,
	})
)
