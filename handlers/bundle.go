package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoints
	ChatHandler         gin.HandlerFunc
	AvailabilityHandler gin.HandlerFunc

	// Admin endpoints
	ListBookingsHandler gin.HandlerFunc

	// Calendar endpoints
	CalendarAuthURLHandler  gin.HandlerFunc
	CalendarCallbackHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires handler structs into the bundle. A nil calendar
// handler leaves the calendar routes unregistered.
func NewHandlerBundle(chat *ChatHandler, admin *AdminHandler, cal *CalendarHandler) *HandlerBundle {
	hb := &HandlerBundle{
		ChatHandler:         chat.HandleChat,
		AvailabilityHandler: admin.AvailabilityHandler,
		ListBookingsHandler: admin.ListBookingsHandler,
		HealthHandler:       HealthHandler,
	}
	if cal != nil {
		hb.CalendarAuthURLHandler = cal.AuthURLHandler
		hb.CalendarCallbackHandler = cal.CallbackHandler
	}
	return hb
}
