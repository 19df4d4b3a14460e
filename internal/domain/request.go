package domain

import "time"

// RequestStatus represents the current status of a ride request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusAccepted  RequestStatus = "ACCEPTED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusRejected, RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is a pass-through flag; settlement happens outside this core.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// RiderProfile is a read-only snapshot of the rider taken at request time.
type RiderProfile struct {
	Name   string
	Phone  string
	Rating float64
}

// RideRequest represents one rider's attempt to join a specific offer.
// The fare is copied from the offer when the request is created and stays
// fixed even if the offer's fare later changes.
type RideRequest struct {
	ID            string
	RideID        string
	RiderID       string
	RiderProfile  RiderProfile
	Status        RequestStatus
	Fare          float64
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanTransitionTo reports whether the request status machine permits the
// move. pending -> accepted -> completed, pending -> rejected, and any
// non-terminal state -> cancelled.
func (r *RideRequest) CanTransitionTo(next RequestStatus) bool {
	if r.Status.Terminal() {
		return false
	}
	switch next {
	case RequestStatusAccepted, RequestStatusRejected:
		return r.Status == RequestStatusPending
	case RequestStatusCompleted:
		return r.Status == RequestStatusAccepted
	case RequestStatusCancelled:
		return true
	default:
		return false
	}
}
