package conversation

import (
	"context"
	"errors"

	bookingRepo "bookly/database/repository/booking"
	"bookly/models"
	"bookly/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// commit runs the booking sequence for a confirmed state. Every store call
// is a gate; a failing gate leaves nothing written.
func (m *Machine) commit(ctx context.Context, state models.ConversationState) (string, models.ConversationState) {
	logger := m.deps.Logger.With(
		zap.String("email", state.Email),
		zap.String("date", state.Date),
		zap.String("time", state.Time),
	)
	if !state.ReadyToConfirm() {
		step, _ := missingStep(state)
		return m.reroute(step, state)
	}

	// The state comes from the client; re-check the date and time it claims
	date, err := m.resolveDate(state.Date)
	if err != nil || date != state.Date {
		logger.Warn("Confirmed date is not bookable", zap.Error(err))
		return m.reroute(models.StepDate, state)
	}
	if !m.slotBookable(state) {
		logger.Warn("Confirmed time is not bookable")
		return m.reschedule(ctx, state)
	}

	now := m.deps.Resolver.Now()
	today := m.deps.Resolver.Today().Format(availability.DateLayout)

	// 1. Daily quota per sender
	count, err := m.deps.Counters.DailyCount(ctx, state.Email, today)
	if err != nil {
		logger.Error("Failed to read daily booking count", zap.Error(err))
		return m.saveFailed(state)
	}
	if count >= m.opts.MaxBookingsPerDay {
		logger.Info("Daily booking quota reached", zap.Int("count", count))
		return replyQuotaExceeded, models.ConversationState{Step: models.StepComplete}
	}

	// 2. Window still free
	start, end, err := m.deps.Resolver.SlotWindow(state.Date, state.Time)
	if err != nil {
		logger.Error("Invalid slot in confirmed state", zap.Error(err))
		return m.saveFailed(state)
	}
	taken, err := m.deps.Bookings.ExistsOverlapping(ctx, start, end)
	if err != nil {
		logger.Error("Failed to check slot availability", zap.Error(err))
		return m.saveFailed(state)
	}
	if taken {
		return m.slotTaken(ctx, state)
	}

	// 3. Insert, then count it
	booking := models.Booking{
		ID:           uuid.NewString(),
		Title:        firstNonEmpty(state.Title, m.opts.DefaultTitle),
		Description:  firstNonEmpty(state.Description, m.opts.DefaultDescription),
		StartTime:    start.UTC(),
		EndTime:      end.UTC(),
		BookerEmail:  state.Email,
		CustomerName: state.CustomerName,
		Status:       models.BookingStatusConfirmed,
		CreatedAt:    now.UTC(),
	}
	if err := m.deps.Bookings.Create(ctx, &booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			logger.Info("Slot taken between check and insert")
			return m.slotTaken(ctx, state)
		}
		logger.Error("Failed to create booking", zap.Error(err))
		return m.saveFailed(state)
	}
	if _, err := m.deps.Counters.IncrementDaily(ctx, state.Email, today); err != nil {
		logger.Warn("Booking saved but daily count not incremented",
			zap.String("bookingID", booking.ID), zap.Error(err))
	}

	// 4. Side effects never touch the reply
	m.deps.Hooks.Dispatch(ctx, booking)

	logger.Info("Booking created", zap.String("bookingID", booking.ID))
	return replyBooked(state.Date, state.Time, state.CustomerName), models.ConversationState{Step: models.StepComplete}
}

// slotTaken sends the user back to pick another time from a fresh snapshot.
func (m *Machine) slotTaken(ctx context.Context, state models.ConversationState) (string, models.ConversationState) {
	slots, err := m.deps.Resolver.AvailableSlots(ctx, state.Date)
	if err != nil {
		m.deps.Logger.Error("Failed to refresh slots after conflict", zap.String("date", state.Date), zap.Error(err))
		return m.saveFailed(state)
	}
	if len(slots) == 0 {
		return replySlotTakenDayFull(state.Date), state.ResetSchedule()
	}
	next := state.WithStep(models.StepTime)
	next.Time = ""
	next.AvailableSlots = slots
	return replySlotTaken(state.Date, slots), next
}

// slotBookable reports whether state.Time is in both the snapshot and the
// catalog and has not started yet.
func (m *Machine) slotBookable(state models.ConversationState) bool {
	if !state.HasSlot(state.Time) || !m.inCatalog(state.Time) {
		return false
	}
	started, err := m.deps.Resolver.HasStarted(state.Date, state.Time)
	return err == nil && !started
}

func (m *Machine) inCatalog(slot string) bool {
	for _, s := range m.deps.Resolver.Catalog() {
		if s == slot {
			return true
		}
	}
	return false
}

// reschedule replaces the snapshot with the slots still open on state.Date
// and asks for a time again.
func (m *Machine) reschedule(ctx context.Context, state models.ConversationState) (string, models.ConversationState) {
	slots, err := m.deps.Resolver.AvailableSlots(ctx, state.Date)
	if err != nil {
		m.deps.Logger.Error("Failed to refresh slots", zap.String("date", state.Date), zap.Error(err))
		return replyAvailabilityDown, state.ResetSchedule()
	}
	if len(slots) == 0 {
		return replyDayPassed(state.Date), state.ResetSchedule()
	}
	next := state.WithStep(models.StepTime)
	next.Time = ""
	next.AvailableSlots = slots
	return replyTimeUnavailable(slots), next
}

// saveFailed rolls back to the time step with the existing snapshot.
func (m *Machine) saveFailed(state models.ConversationState) (string, models.ConversationState) {
	next := state.WithStep(models.StepTime)
	next.Time = ""
	return replySaveFailed(next.AvailableSlots), next
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
