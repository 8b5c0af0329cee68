package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookly/models"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const primaryCalendar = "primary"

// SyncHook inserts a calendar event for every committed booking. It is a
// no-op until the owner has authorized access.
type SyncHook struct {
	auth   *Authorizer
	logger *zap.Logger
	// extra client options, e.g. a test endpoint
	opts []option.ClientOption
}

func NewSyncHook(auth *Authorizer, logger *zap.Logger, opts ...option.ClientOption) *SyncHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHook{auth: auth, logger: logger, opts: opts}
}

func (h *SyncHook) Name() string { return "calendar" }

func (h *SyncHook) AfterCommit(ctx context.Context, booking models.Booking) error {
	client, err := h.auth.Client(ctx)
	if errors.Is(err, ErrNoToken) {
		h.logger.Debug("Calendar not authorized, skipping sync", zap.String("bookingID", booking.ID))
		return nil
	}
	if err != nil {
		return err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, h.opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("calendar: create service: %w", err)
	}

	created, err := svc.Events.Insert(primaryCalendar, eventFor(booking)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("calendar: insert event: %w", err)
	}
	h.logger.Info("Booking synced to calendar",
		zap.String("bookingID", booking.ID), zap.String("eventID", created.Id))
	return nil
}

func eventFor(b models.Booking) *gcal.Event {
	return &gcal.Event{
		Summary:     b.Title,
		Description: b.Description,
		Start:       &gcal.EventDateTime{DateTime: b.StartTime.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: b.EndTime.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		Attendees:   []*gcal.EventAttendee{{Email: b.BookerEmail, DisplayName: b.CustomerName}},
		Reminders:   &gcal.EventReminders{UseDefault: true},
	}
}
