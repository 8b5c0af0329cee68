package notification

import (
	"fmt"

	"bookly/models"
)

const summaryLayout = "Mon Jan 2 2006 15:04 MST"

// Summary renders a one-line owner notification for booking.
func Summary(booking models.Booking) string {
	who := booking.CustomerName
	if who == "" {
		who = booking.BookerEmail
	}
	return fmt.Sprintf("New booking: %s for %s (%s) at %s",
		booking.Title, who, booking.BookerEmail, booking.StartTime.Format(summaryLayout))
}
