package notification

import (
	"context"
	"fmt"

	"bookly/models"

	"github.com/slack-go/slack"
)

// SlackHook posts an owner notification through a Slack incoming webhook.
type SlackHook struct {
	webhookURL string
}

func NewSlackHook(webhookURL string) *SlackHook {
	return &SlackHook{webhookURL: webhookURL}
}

func (h *SlackHook) Name() string { return "slack" }

func (h *SlackHook) AfterCommit(ctx context.Context, booking models.Booking) error {
	msg := &slack.WebhookMessage{
		Text: Summary(booking),
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "*"+Summary(booking)+"*", false, false), nil, nil),
			slack.NewContextBlock("",
				slack.NewTextBlockObject(slack.MarkdownType, "Booking `"+booking.ID+"`", false, false)),
		}},
	}
	if err := slack.PostWebhookContext(ctx, h.webhookURL, msg); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}
