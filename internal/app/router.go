package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"carpool/internal/handler"
	"carpool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OfferHandler        *handler.OfferHandler
	RequestHandler      *handler.RequestHandler
	NotificationHandler *handler.NotificationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Offer routes.
		offers := v1.Group("/offers")
		{
			offers.POST("", deps.OfferHandler.CreateOffer)
			offers.POST("/search", deps.OfferHandler.SearchOffers)
			offers.GET("/:id", deps.OfferHandler.GetOffer)
			offers.GET("/:id/bookings", deps.OfferHandler.GetBookings)
			offers.GET("/:id/request", deps.OfferHandler.GetRiderRequest)
			offers.POST("/:id/book", deps.OfferHandler.BookSeat)
			offers.POST("/:id/unbook", deps.OfferHandler.CancelBooking)
			offers.POST("/:id/start", deps.OfferHandler.StartOffer)
			offers.POST("/:id/complete", deps.OfferHandler.CompleteOffer)
			offers.POST("/:id/cancel", deps.OfferHandler.CancelOffer)
		}

		// Request routes.
		requests := v1.Group("/requests")
		{
			requests.GET("/:id", deps.RequestHandler.GetRequest)
			requests.POST("/:id/accept", deps.RequestHandler.AcceptRequest)
			requests.POST("/:id/reject", deps.RequestHandler.RejectRequest)
		}

		// Notification routes.
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.ListUnread)
			notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
		}

		// Live notification stream.
		v1.GET("/ws/notifications", deps.NotificationHandler.Stream)
	}

	return router
}
