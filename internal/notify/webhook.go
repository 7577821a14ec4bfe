package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dompetapp/dompet/internal/models"
)

// webhookPayload is the body POSTed to the user's webhook URL.
type webhookPayload struct {
	Type       string `json:"type"`
	ReminderID string `json:"reminder_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	DueAt      string `json:"due_at"`
}

type WebhookDispatcher struct {
	client *resty.Client
}

func NewWebhook() *WebhookDispatcher {
	return &WebhookDispatcher{
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

func (d *WebhookDispatcher) Channel() models.Channel { return models.ChannelWebhook }

func (d *WebhookDispatcher) Deliver(ctx context.Context, n Notification) error {
	if n.WebhookURL == "" {
		return fmt.Errorf("no webhook URL configured for user %s", n.UserID)
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			Type:       "reminder",
			ReminderID: n.ReminderID,
			Title:      n.Title,
			Message:    n.Message,
			DueAt:      n.DueAt.UTC().Format(time.RFC3339),
		}).
		Post(n.WebhookURL)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook rejected payload: %s", resp.Status())
	}
	return nil
}
