package handlers

import (
	"net/http"

	bookingRepo "bookly/database/repository/booking"
	"bookly/services/availability"
	"bookly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes persisted bookings to operators.
type AdminHandler struct {
	Bookings bookingRepo.BookingRepository
	Resolver *availability.Resolver
}

func NewAdminHandler(bookings bookingRepo.BookingRepository, resolver *availability.Resolver) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Resolver: resolver}
}

// ListBookingsHandler returns the bookings of ?date=YYYY-MM-DD, today by default.
func (ah *AdminHandler) ListBookingsHandler(c *gin.Context) {
	date := c.DefaultQuery("date", ah.Resolver.Today().Format(availability.DateLayout))
	day, err := ah.Resolver.ParseDate(date)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date", "expected YYYY-MM-DD")
		return
	}

	bookings, err := ah.Bookings.ListBetween(c.Request.Context(), day, day.AddDate(0, 0, 1))
	if err != nil {
		utils.RequestLogger(c).Error("Failed to fetch bookings", zap.String("date", date), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch bookings", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "bookings": bookings})
}

// AvailabilityHandler returns the open slots of ?date=YYYY-MM-DD.
func (ah *AdminHandler) AvailabilityHandler(c *gin.Context) {
	date := c.DefaultQuery("date", ah.Resolver.Today().Format(availability.DateLayout))
	if _, err := ah.Resolver.ParseDate(date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date", "expected YYYY-MM-DD")
		return
	}
	slots, err := ah.Resolver.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		utils.RequestLogger(c).Error("Failed to resolve availability", zap.String("date", date), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to check availability", "")
		return
	}
	if slots == nil {
		slots = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}
