// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"time"

	"bookly/models"
)

// ErrSlotTaken is returned by Create when another booking already holds the window.
var ErrSlotTaken = errors.New("booking window already taken")

// BookingRepository is the persistence boundary for bookings.
type BookingRepository interface {
	// Create inserts booking. A uniqueness violation on the window yields ErrSlotTaken.
	Create(ctx context.Context, booking *models.Booking) error
	// ExistsOverlapping reports whether any booking intersects [start, end).
	ExistsOverlapping(ctx context.Context, start, end time.Time) (bool, error)
	// ListBetween returns bookings intersecting [from, to) ordered by start time.
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}
