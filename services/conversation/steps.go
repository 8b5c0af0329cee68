package conversation

import (
	"context"
	"errors"
	"regexp"

	"bookly/models"
	"bookly/services/extraction"

	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (m *Machine) handleInitial(_ context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	if value != extraction.IntentBook {
		return replyOffer, state
	}
	return replyAskName, state.WithStep(models.StepName)
}

func (m *Machine) handleName(_ context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	if value == "" {
		return replyNameMissing, state
	}
	next := state.WithStep(models.StepEmail)
	next.CustomerName = value
	return replyThanksName(value), next
}

func (m *Machine) handleEmail(_ context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	if !emailPattern.MatchString(value) {
		return replyEmailInvalid, state
	}
	next := state.WithStep(models.StepDate)
	next.Email = value
	return replyAskDate, next
}

func (m *Machine) handleDate(ctx context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	date, err := m.resolveDate(value)
	if err != nil {
		if errors.Is(err, errDatePast) {
			return replyDatePast, state
		}
		return replyDateInvalid, state
	}

	slots, err := m.deps.Resolver.AvailableSlots(ctx, date)
	if err != nil {
		m.deps.Logger.Error("Failed to resolve available slots", zap.String("date", date), zap.Error(err))
		return replyAvailabilityDown, state
	}
	if len(slots) == 0 {
		return replyFullyBooked(date), state
	}

	next := state.WithStep(models.StepTime)
	next.Date = date
	next.Time = ""
	next.AvailableSlots = slots
	return replySlots(date, slots), next
}

func (m *Machine) handleTime(_ context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	if value == "" || !state.HasSlot(value) {
		return replyTimeUnavailable(state.AvailableSlots), state
	}

	started, err := m.deps.Resolver.HasStarted(state.Date, value)
	if err != nil || started {
		remaining := m.futureSlots(state)
		if len(remaining) == 0 {
			return replyDayPassed(state.Date), state.ResetSchedule()
		}
		next := state.Clone()
		next.AvailableSlots = remaining
		return replyTimeUnavailable(remaining), next
	}

	next := state.Clone()
	next.Time = value
	if m.opts.CollectDetails {
		next.Step = models.StepTitle
		return replyAskTitle, next
	}
	next.Step = models.StepConfirm
	return replyConfirm(next.Date, next.Time, next.CustomerName, next.Title), next
}

// futureSlots drops the snapshot entries whose start is no longer ahead of the clock.
func (m *Machine) futureSlots(state models.ConversationState) []string {
	var out []string
	for _, slot := range state.AvailableSlots {
		started, err := m.deps.Resolver.HasStarted(state.Date, slot)
		if err != nil || started {
			continue
		}
		out = append(out, slot)
	}
	return out
}

func (m *Machine) handleTitle(_ context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	if value == "" {
		return replyAskTitle, state
	}
	next := state.WithStep(models.StepDescription)
	next.Title = value
	return replyAskDescription, next
}

func (m *Machine) handleDescription(_ context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	if value == "" {
		return replyAskDescription, state
	}
	next := state.WithStep(models.StepConfirm)
	next.Description = value
	return replyConfirm(next.Date, next.Time, next.CustomerName, next.Title), next
}

func (m *Machine) handleConfirm(ctx context.Context, value string, state models.ConversationState) (string, models.ConversationState) {
	switch value {
	case extraction.ConfirmYes:
		return m.commit(ctx, state)
	case extraction.ConfirmNo:
		return replyDeclined, state.ResetSchedule()
	}
	return replyConfirmAgain(state.Date, state.Time), state
}
