package notification

import (
	"context"
	"fmt"
	"time"

	"bookly/models"

	"github.com/bwmarrin/discordgo"
)

// webhookSession is the part of *discordgo.Session the hook needs.
type webhookSession interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordHook posts an owner notification through a Discord webhook.
type DiscordHook struct {
	sess      webhookSession
	webhookID string
	token     string
}

// NewDiscordHook builds a hook for the webhook identified by id and token.
// Webhook execution needs no bot token.
func NewDiscordHook(webhookID, token string) (*DiscordHook, error) {
	if webhookID == "" || token == "" {
		return nil, fmt.Errorf("discord: webhook id and token are required")
	}
	dg, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &DiscordHook{sess: dg, webhookID: webhookID, token: token}, nil
}

func (h *DiscordHook) Name() string { return "discord" }

func (h *DiscordHook) AfterCommit(ctx context.Context, booking models.Booking) error {
	params := &discordgo.WebhookParams{
		Content: Summary(booking),
		Embeds: []*discordgo.MessageEmbed{{
			Title:     booking.Title,
			Timestamp: booking.StartTime.Format(time.RFC3339),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Customer", Value: valueOr(booking.CustomerName, "-"), Inline: true},
				{Name: "Email", Value: booking.BookerEmail, Inline: true},
				{Name: "Booking", Value: booking.ID},
			},
		}},
	}
	if _, err := h.sess.WebhookExecute(h.webhookID, h.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
