package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// OfferHandler handles HTTP requests for ride offers: publication,
// retrieval, candidate search, booking, and lifecycle transitions.
type OfferHandler struct {
	offerService     *service.OfferService
	matchingService  *service.MatchingService
	bookingService   *service.BookingService
	lifecycleService *service.LifecycleService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(
	offerService *service.OfferService,
	matchingService *service.MatchingService,
	bookingService *service.BookingService,
	lifecycleService *service.LifecycleService,
) *OfferHandler {
	return &OfferHandler{
		offerService:     offerService,
		matchingService:  matchingService,
		bookingService:   bookingService,
		lifecycleService: lifecycleService,
	}
}

// LocationBody is the wire form of a location.
type LocationBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

func (l LocationBody) toDomain() domain.Location {
	return domain.Location{Latitude: l.Latitude, Longitude: l.Longitude, Address: l.Address}
}

func locationBody(l domain.Location) LocationBody {
	return LocationBody{Latitude: l.Latitude, Longitude: l.Longitude, Address: l.Address}
}

// CreateOfferRequest is the HTTP request body for publishing an offer.
type CreateOfferRequest struct {
	DriverID      string       `json:"driver_id"`
	DriverName    string       `json:"driver_name"`
	DriverPhone   string       `json:"driver_phone"`
	DriverRating  float64      `json:"driver_rating"`
	VehicleModel  string       `json:"vehicle_model"`
	VehicleNumber string       `json:"vehicle_number"`
	VehicleColor  string       `json:"vehicle_color"`
	Pickup        LocationBody `json:"pickup"`
	Dropoff       LocationBody `json:"dropoff"`
	DepartureTime time.Time    `json:"departure_time"`
	TotalSeats    int          `json:"total_seats"`
	Fare          float64      `json:"fare"`
}

// OfferResponse is the HTTP representation of an offer.
type OfferResponse struct {
	ID             string       `json:"id"`
	DriverID       string       `json:"driver_id"`
	DriverName     string       `json:"driver_name"`
	DriverRating   float64      `json:"driver_rating"`
	VehicleModel   string       `json:"vehicle_model"`
	VehicleNumber  string       `json:"vehicle_number"`
	VehicleColor   string       `json:"vehicle_color"`
	Pickup         LocationBody `json:"pickup"`
	Dropoff        LocationBody `json:"dropoff"`
	DepartureTime  time.Time    `json:"departure_time"`
	TotalSeats     int          `json:"total_seats"`
	AvailableSeats int          `json:"available_seats"`
	Fare           float64      `json:"fare"`
	Status         string       `json:"status"`
	Passengers     []string     `json:"passengers"`
}

func offerResponse(offer *domain.RideOffer) OfferResponse {
	return OfferResponse{
		ID:             offer.ID,
		DriverID:       offer.DriverID,
		DriverName:     offer.DriverProfile.Name,
		DriverRating:   offer.DriverProfile.Rating,
		VehicleModel:   offer.DriverProfile.Vehicle.Model,
		VehicleNumber:  offer.DriverProfile.Vehicle.Number,
		VehicleColor:   offer.DriverProfile.Vehicle.Color,
		Pickup:         locationBody(offer.Route.Pickup),
		Dropoff:        locationBody(offer.Route.Dropoff),
		DepartureTime:  offer.DepartureTime,
		TotalSeats:     offer.TotalSeats,
		AvailableSeats: offer.AvailableSeats,
		Fare:           offer.Fare,
		Status:         string(offer.Status),
		Passengers:     offer.Passengers,
	}
}

// CreateOffer handles POST /v1/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := h.offerService.CreateOffer(c.Request.Context(), service.CreateOfferInput{
		DriverID: req.DriverID,
		DriverProfile: domain.DriverProfile{
			Name:   req.DriverName,
			Phone:  req.DriverPhone,
			Rating: req.DriverRating,
			Vehicle: domain.VehicleDetails{
				Model:  req.VehicleModel,
				Number: req.VehicleNumber,
				Color:  req.VehicleColor,
			},
		},
		Pickup:        req.Pickup.toDomain(),
		Dropoff:       req.Dropoff.toDomain(),
		DepartureTime: req.DepartureTime,
		TotalSeats:    req.TotalSeats,
		Fare:          req.Fare,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, offerResponse(offer))
}

// GetOffer handles GET /v1/offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	offer, err := h.offerService.GetOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}

// SearchOffersRequest is the HTTP request body for a candidate search.
type SearchOffersRequest struct {
	Pickup        LocationBody `json:"pickup"`
	Dropoff       LocationBody `json:"dropoff"`
	NotBefore     time.Time    `json:"not_before"`
	MaxDistanceKm float64      `json:"max_distance_km,omitempty"`
	Seats         int          `json:"seats,omitempty"`
}

// SearchOffersResponse is the HTTP response for a candidate search.
type SearchOffersResponse struct {
	Offers []OfferResponse `json:"offers"`
}

// SearchOffers handles POST /v1/offers/search
func (h *OfferHandler) SearchOffers(c *gin.Context) {
	var req SearchOffersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	notBefore := req.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now()
	}

	candidates, err := h.matchingService.FindCandidates(c.Request.Context(), service.SearchInput{
		Pickup:        req.Pickup.toDomain(),
		Dropoff:       req.Dropoff.toDomain(),
		NotBefore:     notBefore,
		MaxDistanceKm: req.MaxDistanceKm,
		Seats:         req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	offers := make([]OfferResponse, 0, len(candidates))
	for _, offer := range candidates {
		offers = append(offers, offerResponse(offer))
	}
	respondJSON(c, http.StatusOK, SearchOffersResponse{Offers: offers})
}

// BookSeatRequest is the HTTP request body for booking a seat.
type BookSeatRequest struct {
	RiderID     string  `json:"rider_id"`
	RiderName   string  `json:"rider_name"`
	RiderPhone  string  `json:"rider_phone"`
	RiderRating float64 `json:"rider_rating"`
}

// BookSeatResponse is the HTTP response for a successful booking.
type BookSeatResponse struct {
	RequestID      string  `json:"request_id"`
	BookingID      string  `json:"booking_id"`
	RideID         string  `json:"ride_id"`
	RiderID        string  `json:"rider_id"`
	Fare           float64 `json:"fare"`
	RequestStatus  string  `json:"request_status"`
	AvailableSeats int     `json:"available_seats"`
}

// BookSeat handles POST /v1/offers/:id/book
func (h *OfferHandler) BookSeat(c *gin.Context) {
	var req BookSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bookingService.RequestSeat(c.Request.Context(), service.RequestSeatInput{
		RideID:  c.Param("id"),
		RiderID: req.RiderID,
		RiderProfile: domain.RiderProfile{
			Name:   req.RiderName,
			Phone:  req.RiderPhone,
			Rating: req.RiderRating,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, BookSeatResponse{
		RequestID:      result.Request.ID,
		BookingID:      result.Booking.ID,
		RideID:         result.Offer.ID,
		RiderID:        result.Request.RiderID,
		Fare:           result.Request.Fare,
		RequestStatus:  string(result.Request.Status),
		AvailableSeats: result.Offer.AvailableSeats,
	})
}

// BookingRecordResponse is the HTTP representation of a booking record.
type BookingRecordResponse struct {
	ID         string    `json:"id"`
	RideID     string    `json:"ride_id"`
	RiderID    string    `json:"rider_id"`
	FareAmount float64   `json:"fare_amount"`
	BookedAt   time.Time `json:"booked_at"`
}

// GetBookings handles GET /v1/offers/:id/bookings
func (h *OfferHandler) GetBookings(c *gin.Context) {
	bookings, err := h.bookingService.RideBookings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]BookingRecordResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingRecordResponse{
			ID:         b.ID,
			RideID:     b.RideID,
			RiderID:    b.RiderID,
			FareAmount: b.FareAmount,
			BookedAt:   b.BookedAt,
		})
	}
	respondJSON(c, http.StatusOK, gin.H{"bookings": out})
}

// GetRiderRequest handles GET /v1/offers/:id/request?rider_id=...
func (h *OfferHandler) GetRiderRequest(c *gin.Context) {
	req, err := h.bookingService.RiderRequest(c.Request.Context(), c.Param("id"), c.Query("rider_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, requestResponse(req))
}

// CancelBookingRequest is the HTTP request body for releasing a seat.
type CancelBookingRequest struct {
	RiderID string `json:"rider_id"`
}

// CancelBooking handles POST /v1/offers/:id/unbook
func (h *OfferHandler) CancelBooking(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"), req.RiderID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "released"})
}

// DriverActionRequest identifies the driver performing an offer-level
// lifecycle transition.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// StartOffer handles POST /v1/offers/:id/start
func (h *OfferHandler) StartOffer(c *gin.Context) {
	h.transition(c, h.lifecycleService.StartOffer)
}

// CompleteOffer handles POST /v1/offers/:id/complete
func (h *OfferHandler) CompleteOffer(c *gin.Context) {
	h.transition(c, h.lifecycleService.CompleteOffer)
}

// CancelOffer handles POST /v1/offers/:id/cancel
func (h *OfferHandler) CancelOffer(c *gin.Context) {
	h.transition(c, h.lifecycleService.CancelOffer)
}

func (h *OfferHandler) transition(c *gin.Context, fn func(ctx context.Context, rideID, driverID string) (*domain.RideOffer, error)) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, err := fn(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offerResponse(offer))
}
