package routes

import (
	"net/http"
	"time"

	"rentx/handlers"
	"rentx/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the global middleware chain and
// every route group registered.
func NewRouter(hb *handlers.HandlerBundle) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCarRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAdminRoutes(r, hb)

	return r
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "rentx up"})
	})
}

// RegisterCarRoutes registers the public car listing endpoints.
func RegisterCarRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cars")
	{
		api.GET("/available", hb.ListAvailableCars)
		api.GET("/:id", hb.GetCar)
	}
}

// RegisterBookingRoutes registers the customer-facing booking endpoints.
// All of them require authentication.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.CreateBooking)
		api.GET("", hb.ListMyBookings)
		api.GET("/:id", hb.GetBooking)
		api.POST("/:id/cancel", hb.CancelBooking)
		api.POST("/:id/extend", hb.ExtendBooking)
		api.GET("/loyalty", hb.LoyaltyStatus)
	}
}

// RegisterAdminRoutes registers the staff desk endpoints: pickup/return
// handling, payment confirmation, and fleet-wide views.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.AdminAuthMiddleware())
		api.POST("/bookings/:id/pickup", hb.MarkPickedUp)
		api.POST("/bookings/:id/return", hb.MarkReturned)
		api.POST("/bookings/:id/paid", hb.MarkPaid)
		api.POST("/bookings/:id/cancel", hb.CancelBooking)
		api.GET("/bookings/:id", hb.GetBooking)
		api.GET("/bookings/active", hb.ListActiveBookings)
		api.GET("/bookings/overdue", hb.ListOverdue)
		api.GET("/bookings/stats", hb.BookingStats)
	}
}
