package models

// Step names a stage of the booking conversation.
type Step string

const (
	StepInitial     Step = "initial"
	StepName        Step = "name"
	StepEmail       Step = "email"
	StepDate        Step = "date"
	StepTime        Step = "time"
	StepTitle       Step = "title"
	StepDescription Step = "description"
	StepConfirm     Step = "confirm"
	StepComplete    Step = "complete"
)

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	switch s {
	case StepInitial, StepName, StepEmail, StepDate, StepTime,
		StepTitle, StepDescription, StepConfirm, StepComplete:
		return true
	}
	return false
}

// ConversationState is owned by the caller and threaded through every turn.
// Methods return modified copies; a state is never mutated in place.
type ConversationState struct {
	Step           Step     `json:"step"`
	CustomerName   string   `json:"customerName,omitempty"`
	Email          string   `json:"email,omitempty"`
	Date           string   `json:"date,omitempty"` // YYYY-MM-DD
	Time           string   `json:"time,omitempty"` // HH:MM
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	AvailableSlots []string `json:"availableSlots,omitempty"`
}

// NewConversationState returns the state of a first contact.
func NewConversationState() ConversationState {
	return ConversationState{Step: StepInitial}
}

// Clone returns a deep copy so the slot snapshot is never shared between turns.
func (s ConversationState) Clone() ConversationState {
	out := s
	if s.AvailableSlots != nil {
		out.AvailableSlots = append([]string(nil), s.AvailableSlots...)
	}
	return out
}

// WithStep returns a copy positioned at step.
func (s ConversationState) WithStep(step Step) ConversationState {
	out := s.Clone()
	out.Step = step
	return out
}

// ResetSchedule returns a copy back at the date step with date, time and
// the slot snapshot cleared. Identity fields are kept.
func (s ConversationState) ResetSchedule() ConversationState {
	out := s.Clone()
	out.Step = StepDate
	out.Date = ""
	out.Time = ""
	out.AvailableSlots = nil
	return out
}

// HasSlot reports whether slot is part of the current snapshot.
func (s ConversationState) HasSlot(slot string) bool {
	for _, v := range s.AvailableSlots {
		if v == slot {
			return true
		}
	}
	return false
}

// ReadyToConfirm reports whether every field the confirm step needs is set.
func (s ConversationState) ReadyToConfirm() bool {
	return s.CustomerName != "" && s.Email != "" && s.Date != "" && s.Time != ""
}
