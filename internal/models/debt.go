package models

import "time"

type DebtDirection string

const (
	DebtDirectionReceivable DebtDirection = "receivable"
	DebtDirectionPayable    DebtDirection = "payable"
)

type DebtStatus string

const (
	DebtStatusOpen    DebtStatus = "open"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusClosed  DebtStatus = "closed"
	DebtStatusOverdue DebtStatus = "overdue"
)

// Debt is a receivable or payable obligation against a counterparty.
// Principal is in integer minor currency units. Status is derived from the
// payment ledger and the due date, never set directly.
type Debt struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Direction      DebtDirection `json:"direction"`
	CounterpartyID string        `json:"counterparty_id"`
	Principal      int64         `json:"principal"`
	Currency       string        `json:"currency"`
	StartDate      time.Time     `json:"start_date"`
	DueDate        *time.Time    `json:"due_date"`
	Status         DebtStatus    `json:"status"`
	Notes          string        `json:"notes"`
	CreatedAt      time.Time     `json:"created_at"`
}
