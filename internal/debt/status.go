// Package debt derives a debt's outstanding balance and lifecycle status
// from its payment ledger.
package debt

import (
	"time"

	"github.com/dompetapp/dompet/internal/models"
)

// Result is the derived view of a debt at a point in time.
type Result struct {
	Outstanding int64
	Status      models.DebtStatus
}

// Compute re-derives status from the full ledger. It is evaluated from
// scratch on every call because the due-date comparison depends on now and
// can flip a debt overdue with no new payments.
//
// Rules, in order: fully paid closes the debt regardless of due date; any
// payment makes it partial; otherwise open. A past due date overrides open
// and partial with overdue. Overpayment is not rejected, outstanding is
// clamped at zero.
func Compute(principal int64, payments []int64, dueDate *time.Time, now time.Time) Result {
	var totalPaid int64
	for _, amount := range payments {
		totalPaid += amount
	}

	outstanding := principal - totalPaid
	if outstanding < 0 {
		outstanding = 0
	}

	status := models.DebtStatusOpen
	switch {
	case totalPaid >= principal:
		status = models.DebtStatusClosed
	case totalPaid > 0:
		status = models.DebtStatusPartial
	}

	if dueDate != nil && dueDate.Before(now) && status != models.DebtStatusClosed {
		status = models.DebtStatusOverdue
	}

	return Result{Outstanding: outstanding, Status: status}
}
