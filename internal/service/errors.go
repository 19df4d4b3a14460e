package service

import "errors"

var (
	// ErrSeatUnavailable is returned when an offer has no free seats or
	// the booking lost the conditional-update race on every attempt.
	ErrSeatUnavailable = errors.New("no seat available")

	// ErrAlreadyBooked is returned when the rider already holds a seat
	// on the offer.
	ErrAlreadyBooked = errors.New("rider already holds a seat on this ride")

	// ErrOwnOffer is returned when a driver tries to book a seat on
	// their own offer.
	ErrOwnOffer = errors.New("driver cannot book own offer")

	// ErrOfferNotActive is returned when booking is attempted against
	// an offer that is no longer accepting passengers.
	ErrOfferNotActive = errors.New("offer is not active")

	// ErrInvalidStateTransition is returned for any illegal lifecycle
	// move; state is left untouched.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotOfferDriver is returned when someone other than the offer's
	// driver tries to act on its requests.
	ErrNotOfferDriver = errors.New("caller is not the driver of this offer")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRiderID is returned when the rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when the ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidRequestID is returned when the request ID is empty.
	ErrInvalidRequestID = errors.New("invalid request id")

	// ErrInvalidUserID is returned when the user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are
	// out of range.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropoffLocation is returned when dropoff coordinates
	// are out of range.
	ErrInvalidDropoffLocation = errors.New("invalid dropoff location")

	// ErrNegativeFare is returned when the offered fare is negative.
	ErrNegativeFare = errors.New("fare must not be negative")

	// ErrPastDeparture is returned when an offer's departure time is
	// not in the future.
	ErrPastDeparture = errors.New("departure time must be in the future")

	// ErrInvalidSeatCount is returned when an offer is created with
	// fewer than one seat.
	ErrInvalidSeatCount = errors.New("offer must have at least one seat")
)
