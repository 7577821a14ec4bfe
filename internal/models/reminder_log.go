package models

import "time"

type LogStatus string

const (
	LogStatusSent   LogStatus = "sent"
	LogStatusFailed LogStatus = "failed"
)

// ReminderLog is an append-only record of one dispatch attempt for one
// reminder. Rows are never updated or deleted.
type ReminderLog struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	ReminderID string         `json:"reminder_id"`
	FiredAt    time.Time      `json:"fired_at"`
	Status     LogStatus      `json:"status"`
	Response   map[string]any `json:"response"`
}
