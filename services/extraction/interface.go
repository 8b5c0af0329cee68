// Package extraction turns free-form chat text into the single field the
// current conversation step is collecting.
package extraction

import (
	"context"
	"fmt"

	"bookly/models"
)

// Field names what a step collects.
type Field string

const (
	FieldNone         Field = ""
	FieldIntent       Field = "intent"
	FieldName         Field = "name"
	FieldEmail        Field = "email"
	FieldDate         Field = "date"
	FieldTime         Field = "time"
	FieldTitle        Field = "title"
	FieldDescription  Field = "description"
	FieldConfirmation Field = "confirmation"
)

// Normalised values for the intent and confirmation fields.
const (
	IntentBook = "book"
	ConfirmYes = "yes"
	ConfirmNo  = "no"
)

// FieldFor maps a step to the field it expects.
func FieldFor(step models.Step) Field {
	switch step {
	case models.StepInitial, models.StepComplete:
		return FieldIntent
	case models.StepName:
		return FieldName
	case models.StepEmail:
		return FieldEmail
	case models.StepDate:
		return FieldDate
	case models.StepTime:
		return FieldTime
	case models.StepTitle:
		return FieldTitle
	case models.StepDescription:
		return FieldDescription
	case models.StepConfirm:
		return FieldConfirmation
	}
	return FieldNone
}

// Request carries the user text and the state it was sent in.
type Request struct {
	Text  string
	State models.ConversationState
}

// Result holds at most one candidate value, for Field only.
type Result struct {
	Field Field
	Value string
	// Raw is free text that accompanied the candidate, if any.
	Raw string
}

// Empty reports whether no candidate was extracted.
func (r Result) Empty() bool { return r.Value == "" }

// Extractor is implemented by every extraction strategy. Implementations
// must only fill the field expected by Request.State.Step.
type Extractor interface {
	Extract(ctx context.Context, req Request) (Result, error)
}

// Kinds accepted by New.
const (
	KindPattern = "pattern"
	KindGemini  = "gemini"
)

// New selects an extractor by configuration. gen is only used by KindGemini.
func New(kind string, gen TextGenerator) (Extractor, error) {
	switch kind {
	case KindPattern, "":
		return NewPatternExtractor(), nil
	case KindGemini:
		if gen == nil {
			return nil, fmt.Errorf("extraction: %s extractor needs a text generator", kind)
		}
		return NewGeminiExtractor(gen), nil
	}
	return nil, fmt.Errorf("extraction: unknown extractor %q", kind)
}
