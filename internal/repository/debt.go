package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dompetapp/dompet/internal/database"
	"github.com/dompetapp/dompet/internal/models"
)

type DebtRepository struct {
	db *database.DB
}

func NewDebtRepository(db *database.DB) *DebtRepository {
	return &DebtRepository{db: db}
}

const debtColumns = `id, user_id, direction, counterparty_id, principal, currency, start_date, due_date, status, notes, created_at`

func scanDebt(row interface{ Scan(...any) error }) (*models.Debt, error) {
	debt := &models.Debt{}
	err := row.Scan(&debt.ID, &debt.UserID, &debt.Direction, &debt.CounterpartyID,
		&debt.Principal, &debt.Currency, &debt.StartDate, &debt.DueDate,
		&debt.Status, &debt.Notes, &debt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return debt, nil
}

func (r *DebtRepository) Create(ctx context.Context, debt *models.Debt) error {
	if debt.ID == "" {
		debt.ID = uuid.NewString()
	}
	if debt.Status == "" {
		debt.Status = models.DebtStatusOpen
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO debts (id, user_id, direction, counterparty_id, principal, currency, start_date, due_date, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		debt.ID, debt.UserID, debt.Direction, debt.CounterpartyID, debt.Principal,
		debt.Currency, debt.StartDate, debt.DueDate, debt.Status, debt.Notes,
	).Scan(&debt.CreatedAt)
}

func (r *DebtRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Debt, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE user_id = $1 ORDER BY due_date ASC NULLS LAST`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}
	return debts, rows.Err()
}

// GetWithPayments loads a debt and its full payment ledger, the inputs the
// status engine re-derives from.
func (r *DebtRepository) GetWithPayments(ctx context.Context, debtID string) (*models.Debt, []*models.DebtPayment, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = $1`,
		debtID,
	)
	debt, err := scanDebt(row)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, user_id, debt_id, transaction_id, amount, paid_at, method, created_at
		 FROM debt_payments WHERE debt_id = $1 ORDER BY paid_at ASC`,
		debtID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var payments []*models.DebtPayment
	for rows.Next() {
		payment := &models.DebtPayment{}
		if err := rows.Scan(&payment.ID, &payment.UserID, &payment.DebtID,
			&payment.TransactionID, &payment.Amount, &payment.PaidAt,
			&payment.Method, &payment.CreatedAt); err != nil {
			return nil, nil, err
		}
		payments = append(payments, payment)
	}
	return debt, payments, rows.Err()
}

// UpdateStatus writes the derived status back. No other debt field is
// written by the engine.
func (r *DebtRepository) UpdateStatus(ctx context.Context, debtID string, status models.DebtStatus) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE debts SET status = $1 WHERE id = $2`,
		status, debtID,
	)
	return err
}

func (r *DebtRepository) Delete(ctx context.Context, debtID, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM debts WHERE id = $1 AND user_id = $2`,
		debtID, userID,
	)
	return err
}
