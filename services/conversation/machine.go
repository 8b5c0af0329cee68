// Package conversation drives the booking dialogue one message at a time.
package conversation

import (
	"context"
	"strings"

	bookingRepo "bookly/database/repository/booking"
	countersRepo "bookly/database/repository/counters"
	"bookly/models"
	"bookly/services/availability"
	"bookly/services/extraction"
	"bookly/services/notification"

	"go.uber.org/zap"
)

const (
	DefaultMaxBookingsPerDay  = 3
	DefaultBookingTitle       = "Appointment Booking"
	DefaultBookingDescription = "Booked via Chatbot"
)

// Deps are the collaborators a Machine talks to during a turn.
type Deps struct {
	Extractor extraction.Extractor
	Resolver  *availability.Resolver
	Bookings  bookingRepo.BookingRepository
	Counters  countersRepo.CounterStore
	Hooks     notification.Dispatcher
	Logger    *zap.Logger
}

type Options struct {
	MaxBookingsPerDay int
	// CollectDetails inserts the title and description steps before confirm.
	CollectDetails     bool
	DefaultTitle       string
	DefaultDescription string
}

type stepHandler func(ctx context.Context, value string, state models.ConversationState) (string, models.ConversationState)

// Machine is safe for concurrent use. It keeps no per-conversation data;
// the caller threads ConversationState through every call.
type Machine struct {
	deps     Deps
	opts     Options
	handlers map[models.Step]stepHandler
}

func NewMachine(deps Deps, opts Options) *Machine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Hooks == nil {
		deps.Hooks = notification.NopDispatcher{}
	}
	if opts.MaxBookingsPerDay <= 0 {
		opts.MaxBookingsPerDay = DefaultMaxBookingsPerDay
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = DefaultBookingTitle
	}
	if opts.DefaultDescription == "" {
		opts.DefaultDescription = DefaultBookingDescription
	}

	m := &Machine{deps: deps, opts: opts}
	m.handlers = map[models.Step]stepHandler{
		models.StepInitial:     m.handleInitial,
		models.StepName:        m.handleName,
		models.StepEmail:       m.handleEmail,
		models.StepDate:        m.handleDate,
		models.StepTime:        m.handleTime,
		models.StepTitle:       m.handleTitle,
		models.StepDescription: m.handleDescription,
		models.StepConfirm:     m.handleConfirm,
	}
	return m
}

// Advance consumes one user message and returns the reply together with the
// next state. The input state is never modified.
func (m *Machine) Advance(ctx context.Context, message string, state models.ConversationState) (string, models.ConversationState) {
	state = state.Clone()
	if !state.Step.Valid() || state.Step == models.StepComplete {
		state = models.NewConversationState()
	}

	if step, ok := missingStep(state); ok {
		return m.reroute(step, state)
	}

	value := m.extract(ctx, message, state)
	return m.handlers[state.Step](ctx, value, state)
}

func (m *Machine) extract(ctx context.Context, message string, state models.ConversationState) string {
	want := extraction.FieldFor(state.Step)
	res, err := m.deps.Extractor.Extract(ctx, extraction.Request{Text: message, State: state})
	if err != nil {
		m.deps.Logger.Warn("Extraction failed, treating as no input",
			zap.String("step", string(state.Step)), zap.Error(err))
		return ""
	}
	if res.Field != want {
		return ""
	}
	return strings.TrimSpace(res.Value)
}

// missingStep returns the earliest step whose data a state at state.Step
// should already carry but does not.
func missingStep(s models.ConversationState) (models.Step, bool) {
	rank := stepRank(s.Step)
	switch {
	case rank > stepRank(models.StepName) && s.CustomerName == "":
		return models.StepName, true
	case rank > stepRank(models.StepEmail) && s.Email == "":
		return models.StepEmail, true
	case rank > stepRank(models.StepDate) && s.Date == "":
		return models.StepDate, true
	case rank >= stepRank(models.StepTime) && len(s.AvailableSlots) == 0:
		return models.StepDate, true
	case rank > stepRank(models.StepTime) && s.Time == "":
		return models.StepTime, true
	}
	return "", false
}

func stepRank(step models.Step) int {
	switch step {
	case models.StepName:
		return 1
	case models.StepEmail:
		return 2
	case models.StepDate:
		return 3
	case models.StepTime:
		return 4
	case models.StepTitle:
		return 5
	case models.StepDescription:
		return 6
	case models.StepConfirm:
		return 7
	}
	return 0
}

// reroute moves a state that skipped ahead back to step and asks for it.
func (m *Machine) reroute(step models.Step, state models.ConversationState) (string, models.ConversationState) {
	m.deps.Logger.Warn("Conversation state missing prerequisites, rerouting",
		zap.String("from", string(state.Step)), zap.String("to", string(step)))

	switch step {
	case models.StepName:
		return replyAskName, state.WithStep(models.StepName)
	case models.StepEmail:
		return replyThanksName(state.CustomerName), state.WithStep(models.StepEmail)
	case models.StepTime:
		next := state.WithStep(models.StepTime)
		next.Time = ""
		return replySlots(next.Date, next.AvailableSlots), next
	}
	return replyAskDate, state.ResetSchedule()
}
