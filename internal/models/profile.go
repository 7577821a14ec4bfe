package models

import "time"

// Profile holds per-user settings and the delivery addresses the channel
// dispatchers need. Reminders themselves carry no addressing data.
type Profile struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	DefaultCurrency string    `json:"default_currency"`
	Timezone        string    `json:"timezone"`
	TelegramChatID  *int64    `json:"telegram_chat_id"`
	WebhookURL      string    `json:"webhook_url"`
	CreatedAt       time.Time `json:"created_at"`
}
