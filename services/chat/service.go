// Package chat runs one inbound chat message through the guard and the
// conversation machine.
package chat

import (
	"context"

	"bookly/models"
	"bookly/services/guard"

	"go.uber.org/zap"
)

// Advancer is the conversation machine as seen by a turn.
type Advancer interface {
	Advance(ctx context.Context, message string, state models.ConversationState) (string, models.ConversationState)
}

// Checker gates a turn before the machine runs.
type Checker interface {
	Check(ctx context.Context, clientID, message string, transcript []models.TranscriptMessage) guard.Verdict
}

type Service struct {
	guard   Checker
	machine Advancer
	logger  *zap.Logger
}

// NewService wires a turn service. A nil guard disables abuse checks.
func NewService(g Checker, machine Advancer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{guard: g, machine: machine, logger: logger}
}

// HandleTurn answers req on behalf of clientID. A nil state is a first contact.
// A blocked turn returns the incoming state untouched.
func (s *Service) HandleTurn(ctx context.Context, clientID string, req models.ChatRequest) models.ChatResponse {
	state := models.NewConversationState()
	if req.State != nil {
		state = req.State.Clone()
	}

	if s.guard != nil {
		if v := s.guard.Check(ctx, clientID, req.Message, req.Messages); v.Blocked {
			s.logger.Info("Chat turn blocked",
				zap.String("client", clientID), zap.String("reason", v.Reason))
			return models.ChatResponse{Reply: v.Reply, State: state}
		}
	}

	reply, next := s.machine.Advance(ctx, req.Message, state)
	s.logger.Debug("Chat turn handled",
		zap.String("client", clientID),
		zap.String("from", string(state.Step)),
		zap.String("to", string(next.Step)))
	return models.ChatResponse{Reply: reply, State: next}
}
