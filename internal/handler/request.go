package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// RequestHandler handles HTTP requests for ride requests: retrieval and
// the driver's accept/reject decisions.
type RequestHandler struct {
	lifecycleService *service.LifecycleService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(lifecycleService *service.LifecycleService) *RequestHandler {
	return &RequestHandler{lifecycleService: lifecycleService}
}

// RequestResponse is the HTTP representation of a ride request.
type RequestResponse struct {
	ID            string    `json:"id"`
	RideID        string    `json:"ride_id"`
	RiderID       string    `json:"rider_id"`
	RiderName     string    `json:"rider_name"`
	RiderRating   float64   `json:"rider_rating"`
	Status        string    `json:"status"`
	Fare          float64   `json:"fare"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

func requestResponse(req *domain.RideRequest) RequestResponse {
	return RequestResponse{
		ID:            req.ID,
		RideID:        req.RideID,
		RiderID:       req.RiderID,
		RiderName:     req.RiderProfile.Name,
		RiderRating:   req.RiderProfile.Rating,
		Status:        string(req.Status),
		Fare:          req.Fare,
		PaymentStatus: string(req.PaymentStatus),
		CreatedAt:     req.CreatedAt,
	}
}

// GetRequest handles GET /v1/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.lifecycleService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, requestResponse(req))
}

// DecideRequest is the HTTP request body for accept/reject.
type DecideRequest struct {
	DriverID string `json:"driver_id"`
}

// AcceptRequest handles POST /v1/requests/:id/accept
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	var body DecideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	req, err := h.lifecycleService.AcceptRequest(c.Request.Context(), c.Param("id"), body.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, requestResponse(req))
}

// RejectRequest handles POST /v1/requests/:id/reject
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	var body DecideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	req, err := h.lifecycleService.RejectRequest(c.Request.Context(), c.Param("id"), body.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, requestResponse(req))
}
