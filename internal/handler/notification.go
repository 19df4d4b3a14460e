package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// NotificationHandler handles HTTP and websocket requests for
// notifications.
type NotificationHandler struct {
	notificationService *service.NotificationService
	upgrader            websocket.Upgrader
	logger              *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the gateway in front of
			// this service.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// NotificationResponse is the HTTP representation of a notification.
type NotificationResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	RideID        string    `json:"ride_id"`
	FromUserID    string    `json:"from_user_id"`
	FromUserName  string    `json:"from_user_name,omitempty"`
	Message       string    `json:"message"`
	Pickup        string    `json:"pickup"`
	Dropoff       string    `json:"dropoff"`
	Fare          float64   `json:"fare"`
	DepartureTime string    `json:"departure_time"`
	PassengerName string    `json:"passenger_name,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

func notificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		Type:          string(n.Type),
		RideID:        n.RideID,
		FromUserID:    n.FromUserID,
		FromUserName:  n.FromUserName,
		Message:       n.Message,
		Pickup:        n.RideDetails.Pickup,
		Dropoff:       n.RideDetails.Dropoff,
		Fare:          n.RideDetails.Fare,
		DepartureTime: n.RideDetails.DepartureTime,
		PassengerName: n.RideDetails.PassengerName,
		Read:          n.Read,
		CreatedAt:     n.CreatedAt,
	}
}

// ListUnread handles GET /v1/notifications?user_id=...
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	userID := c.Query("user_id")

	notifications, err := h.notificationService.ListUnread(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse(n))
	}
	respondJSON(c, http.StatusOK, gin.H{"notifications": out})
}

// MarkRead handles POST /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "read"})
}

// Stream handles GET /v1/ws/notifications?user_id=...
//
// Upgrades to a websocket and pushes the unread backlog followed by live
// notifications until the client disconnects.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	stream, cancel, err := h.notificationService.Subscribe(c.Request.Context(), userID)
	if err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}
	defer cancel()

	// Reader goroutine: its only job is noticing the peer went away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(notificationResponse(n)); err != nil {
				h.logger.Debug("websocket write failed", "user_id", userID, "error", err)
				return
			}
		case <-closed:
			return
		}
	}
}
