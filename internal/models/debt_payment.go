package models

import "time"

// DebtPayment is an append-only ledger entry. Amount is in integer minor
// currency units and must be positive.
type DebtPayment struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DebtID        string    `json:"debt_id"`
	TransactionID *string   `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	PaidAt        time.Time `json:"paid_at"`
	Method        string    `json:"method"`
	CreatedAt     time.Time `json:"created_at"`
}
