package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dompetapp/dompet/internal/models"
)

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// EmailDispatcher sends reminder mail through a Resend-compatible HTTP API.
type EmailDispatcher struct {
	client *resty.Client
	from   string
}

func NewEmail(baseURL, apiKey, from string) *EmailDispatcher {
	return &EmailDispatcher{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey).
			SetTimeout(10 * time.Second),
		from: from,
	}
}

func (d *EmailDispatcher) Channel() models.Channel { return models.ChannelEmail }

func (d *EmailDispatcher) Deliver(ctx context.Context, n Notification) error {
	if n.EmailTo == "" {
		return fmt.Errorf("no email address configured for user %s", n.UserID)
	}

	text := n.Message
	if text == "" {
		text = n.Title
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(emailRequest{
			From:    d.from,
			To:      []string{n.EmailTo},
			Subject: n.Title,
			Text:    text,
		}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("email api: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email api rejected send: %s", resp.Status())
	}
	return nil
}
