package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dompetapp/dompet/internal/database"
	"github.com/dompetapp/dompet/internal/models"
)

type DebtPaymentRepository struct {
	db *database.DB
}

func NewDebtPaymentRepository(db *database.DB) *DebtPaymentRepository {
	return &DebtPaymentRepository{db: db}
}

// Append adds one immutable ledger entry. There is no update or delete.
func (r *DebtPaymentRepository) Append(ctx context.Context, payment *models.DebtPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO debt_payments (id, user_id, debt_id, transaction_id, amount, paid_at, method)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		payment.ID, payment.UserID, payment.DebtID, payment.TransactionID,
		payment.Amount, payment.PaidAt, payment.Method,
	).Scan(&payment.CreatedAt)
}
