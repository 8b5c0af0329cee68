package routes

import (
	"time"

	"bookly/handlers"
	"bookly/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the public conversation endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/chat", hb.ChatHandler)
		api.GET("/availability", hb.AvailabilityHandler)
	}
}

// RegisterCalendarRoutes registers the owner's calendar authorization flow.
func RegisterCalendarRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.CalendarAuthURLHandler == nil {
		return
	}
	api := r.Group("/api/calendar")
	{
		// Google redirects the browser here, so no bearer token is available.
		api.GET("/callback", hb.CalendarCallbackHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthAdminMiddleware())
		protected.GET("/auth-url", hb.CalendarAuthURLHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware())
		adminGroup.GET("/bookings", hb.ListBookingsHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, origins []string) {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	RegisterChatRoutes(r, hb)
	RegisterCalendarRoutes(r, hb)
	RegisterHealthRoute(r, hb)
	RegisterAdminRoutes(r, hb)
}
