package bot

import (
	"context"

	"bookly/models"
	"bookly/services/sessions"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	greetingText = "Hi! I'm the booking assistant. Tell me you'd like to book an appointment and I'll walk you through it."
	helpText     = "Just chat with me to book an appointment.\n/start - start over\n/cancel - forget this conversation\n/help - show this message"
	cancelText   = "Okay, I've forgotten this conversation. Say hi whenever you want to book."
	unknownText  = "Unknown command. Use /help to see what I understand."
	failureText  = "I'm sorry, something went wrong on my side. Please try again in a moment."
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	id := sessionID(chatID)

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.clear(ctx, id)
			b.reply(chatID, greetingText, removeKeyboard())
		case "help":
			b.reply(chatID, helpText, nil)
		case "cancel":
			b.clear(ctx, id)
			b.reply(chatID, cancelText, removeKeyboard())
		default:
			b.reply(chatID, unknownText, nil)
		}
		return
	}
	if message.Text == "" {
		return
	}

	sess, err := sessions.Load(ctx, b.sessions, id)
	if err != nil {
		b.logger.Error("Failed to load session", zap.String("session", id), zap.Error(err))
		b.reply(chatID, failureText, nil)
		return
	}

	state := sess.State
	resp := b.turns.HandleTurn(ctx, id, models.ChatRequest{
		Message:  message.Text,
		State:    &state,
		Messages: sess.Transcript,
	})

	next := sess.Record(message.Text, resp.Reply, b.now())
	next.State = resp.State
	if err := b.sessions.Set(ctx, id, next); err != nil {
		b.logger.Error("Failed to save session", zap.String("session", id), zap.Error(err))
	}

	b.reply(chatID, resp.Reply, keyboardFor(resp.State))
}

func (b *Bot) clear(ctx context.Context, id string) {
	if err := b.sessions.Clear(ctx, id); err != nil {
		b.logger.Warn("Failed to clear session", zap.String("session", id), zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.send.Send(msg); err != nil {
		b.logger.Warn("Failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}
