// Package notify defines the channel dispatch abstraction used by the
// reminder dispatch loop. Each supported channel gets its own Dispatcher;
// adding a channel means adding a variant, the loop never changes.
package notify

import (
	"context"
	"time"

	"github.com/dompetapp/dompet/internal/models"
)

// Notification is one reminder resolved for delivery. The reminder record
// itself carries no per-channel addresses, so the caller fills in the
// addressing fields from the owner's profile before dispatch.
type Notification struct {
	ReminderID string
	UserID     string
	Title      string
	Message    string
	DueAt      time.Time

	// Addressing, resolved from the user's profile.
	EmailTo        string
	TelegramChatID int64
	WebhookURL     string
}

// Dispatcher delivers a notification over one channel. A nil error means the
// transport accepted the payload; anything else is a descriptive delivery
// failure. One dispatcher's failure never affects another's attempt.
type Dispatcher interface {
	Channel() models.Channel
	Deliver(ctx context.Context, n Notification) error
}

// Registry maps dispatchers by channel for the dispatch loop.
func Registry(dispatchers ...Dispatcher) map[models.Channel]Dispatcher {
	m := make(map[models.Channel]Dispatcher, len(dispatchers))
	for _, d := range dispatchers {
		m[d.Channel()] = d
	}
	return m
}
