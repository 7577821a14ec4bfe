package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dompetapp/dompet/internal/models"
)

// TelegramDispatcher delivers reminders as bot messages. The chat id comes
// from the owner's profile, not from the reminder.
type TelegramDispatcher struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(api *tgbotapi.BotAPI) *TelegramDispatcher {
	return &TelegramDispatcher{api: api}
}

func (d *TelegramDispatcher) Channel() models.Channel { return models.ChannelTelegram }

func (d *TelegramDispatcher) Deliver(ctx context.Context, n Notification) error {
	if n.TelegramChatID == 0 {
		return fmt.Errorf("no telegram chat id configured for user %s", n.UserID)
	}

	text := "⏰ " + n.Title
	if n.Message != "" {
		text += "\n\n" + n.Message
	}

	msg := tgbotapi.NewMessage(n.TelegramChatID, text)
	if _, err := d.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
