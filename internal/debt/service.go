package debt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dompetapp/dompet/internal/models"
)

// DebtStore reads and writes debts. Status is the only field the engine
// writes back.
type DebtStore interface {
	GetWithPayments(ctx context.Context, debtID string) (*models.Debt, []*models.DebtPayment, error)
	UpdateStatus(ctx context.Context, debtID string, status models.DebtStatus) error
}

// PaymentStore appends ledger entries. There is no update or delete path.
type PaymentStore interface {
	Append(ctx context.Context, payment *models.DebtPayment) error
}

// Details is a debt joined with its ledger and derived fields.
type Details struct {
	Debt        *models.Debt          `json:"debt"`
	Payments    []*models.DebtPayment `json:"payments"`
	Outstanding int64                 `json:"outstanding"`
}

type Service struct {
	debts    DebtStore
	payments PaymentStore
	log      zerolog.Logger
}

func NewService(debts DebtStore, payments PaymentStore, log zerolog.Logger) *Service {
	return &Service{
		debts:    debts,
		payments: payments,
		log:      log.With().Str("component", "debt").Logger(),
	}
}

// RecordPayment appends a payment and synchronously re-derives the debt's
// status. now is injected so callers (and tests) control the overdue cutoff.
func (s *Service) RecordPayment(ctx context.Context, payment *models.DebtPayment, now time.Time) (*Details, error) {
	if payment.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %d", payment.Amount)
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = now
	}

	if err := s.payments.Append(ctx, payment); err != nil {
		return nil, fmt.Errorf("append payment: %w", err)
	}

	details, err := s.Refresh(ctx, payment.DebtID, now)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("debt_id", payment.DebtID).
		Int64("amount", payment.Amount).
		Int64("outstanding", details.Outstanding).
		Str("status", string(details.Debt.Status)).
		Msg("payment recorded")

	return details, nil
}

// Refresh re-derives and persists a debt's status from its ledger. The write
// is skipped when the status is unchanged.
func (s *Service) Refresh(ctx context.Context, debtID string, now time.Time) (*Details, error) {
	d, payments, err := s.debts.GetWithPayments(ctx, debtID)
	if err != nil {
		return nil, fmt.Errorf("load debt %s: %w", debtID, err)
	}

	amounts := make([]int64, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}

	res := Compute(d.Principal, amounts, d.DueDate, now)
	if res.Status != d.Status {
		if err := s.debts.UpdateStatus(ctx, debtID, res.Status); err != nil {
			return nil, fmt.Errorf("update debt status: %w", err)
		}
		d.Status = res.Status
	}

	return &Details{Debt: d, Payments: payments, Outstanding: res.Outstanding}, nil
}

// Get returns a debt with its ledger and a freshly derived outstanding
// balance, re-deriving status on the way out.
func (s *Service) Get(ctx context.Context, debtID string, now time.Time) (*Details, error) {
	return s.Refresh(ctx, debtID, now)
}
