// Package bot serves the booking conversation over Telegram.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bookly/models"
	"bookly/services/sessions"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Turner answers one chat message.
type Turner interface {
	HandleTurn(ctx context.Context, clientID string, req models.ChatRequest) models.ChatResponse
}

// sender abstracts the BotAPI method used to reply, for tests.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot relays Telegram messages to the conversation and keeps each chat's
// state in a session store.
type Bot struct {
	api      *tgbotapi.BotAPI
	send     sender
	turns    Turner
	sessions sessions.Store
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a bot authenticated with token.
func New(token string, turns Turner, store sessions.Store, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, send: api, turns: turns, sessions: store, logger: logger, now: time.Now}, nil
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func sessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}
