// Package guard short-circuits chat turns that arrive too fast or repeat the
// previous message. It is advisory: a failing counter store lets the turn through.
package guard

import (
	"context"
	"time"

	countersRepo "bookly/database/repository/counters"
	"bookly/models"

	"go.uber.org/zap"
)

const DefaultMaxRequestsPerMinute = 20

const (
	ReplySlowDown  = "You're sending messages too quickly. Please wait a moment and try again."
	ReplyRepeating = "It seems you're repeating yourself. Could you rephrase that or tell me something new?"
)

// Reasons reported in a Verdict.
const (
	ReasonRateLimited = "rate_limited"
	ReasonRepeated    = "repeated"
)

// Verdict is the outcome of Check. A zero Verdict lets the turn proceed.
type Verdict struct {
	Blocked bool
	Reason  string
	Reply   string
}

type Guard struct {
	counters    countersRepo.CounterStore
	maxRequests int
	now         func() time.Time
	logger      *zap.Logger
}

// NewGuard builds a guard allowing maxRequests per client within the rate
// window. A non-positive maxRequests uses DefaultMaxRequestsPerMinute.
func NewGuard(counters countersRepo.CounterStore, maxRequests int, now func() time.Time, logger *zap.Logger) *Guard {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequestsPerMinute
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{counters: counters, maxRequests: maxRequests, now: now, logger: logger}
}

// Check evaluates one inbound message. transcript holds the conversation as
// it was before message.
func (g *Guard) Check(ctx context.Context, clientID, message string, transcript []models.TranscriptMessage) Verdict {
	if clientID != "" && g.counters != nil {
		rec, err := g.counters.TouchRateLimit(ctx, clientID, g.now())
		switch {
		case err != nil:
			g.logger.Warn("Rate limit store unavailable, letting request through",
				zap.String("client", clientID), zap.Error(err))
		case rec.RequestCount > g.maxRequests:
			g.logger.Info("Chat rate limit exceeded",
				zap.String("client", clientID), zap.Int("count", rec.RequestCount))
			return Verdict{Blocked: true, Reason: ReasonRateLimited, Reply: ReplySlowDown}
		}
	}

	if last, ok := models.LastUserMessage(transcript); ok && last == message {
		return Verdict{Blocked: true, Reason: ReasonRepeated, Reply: ReplyRepeating}
	}
	return Verdict{}
}
