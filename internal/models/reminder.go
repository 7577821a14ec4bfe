package models

import "time"

type ReminderKind string

const (
	ReminderKindDebt    ReminderKind = "debt"
	ReminderKindGeneric ReminderKind = "generic"
)

type Reminder struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Kind        ReminderKind `json:"kind"`
	DebtID      *string      `json:"debt_id"`
	Title       string       `json:"title"`
	Message     string       `json:"message"`
	Channels    []Channel    `json:"channels"`
	DueAt       time.Time    `json:"due_at"`
	RecurRule   string       `json:"recur_rule"` // RFC 5545 RRULE fragment, empty for one-shot
	IsActive    bool         `json:"is_active"`
	LastFiredAt *time.Time   `json:"last_fired_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IsRecurring returns true if this reminder has a recurrence rule
func (r *Reminder) IsRecurring() bool {
	return r.RecurRule != ""
}
