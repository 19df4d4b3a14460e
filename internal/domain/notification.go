package domain

import "time"

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideRequest  NotificationType = "RIDE_REQUEST"
	NotificationRideAccepted NotificationType = "RIDE_ACCEPTED"
	NotificationRideRejected NotificationType = "RIDE_REJECTED"
)

// RideDetails is the denormalized snapshot a notification carries so the
// recipient can render it without a follow-up read of the offer.
type RideDetails struct {
	Pickup        string
	Dropoff       string
	Fare          float64
	DepartureTime string
	PassengerName string
}

// Notification is a one-way message between the two parties of a ride.
// Write-once, then only the Read flag flips. Never deleted.
type Notification struct {
	ID           string
	Type         NotificationType
	RideID       string
	FromUserID   string
	FromUserName string
	ToUserID     string
	Message      string
	RideDetails  RideDetails
	Read         bool
	CreatedAt    time.Time
}
