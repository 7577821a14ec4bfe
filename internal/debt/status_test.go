package debt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dompetapp/dompet/internal/models"
)

var now = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		principal int64
		payments  []int64
		dueDate   *time.Time
		want      Result
	}{
		{
			name:      "no payments is open",
			principal: 100000,
			want:      Result{Outstanding: 100000, Status: models.DebtStatusOpen},
		},
		{
			name:      "partial payment",
			principal: 100000,
			payments:  []int64{30000},
			want:      Result{Outstanding: 70000, Status: models.DebtStatusPartial},
		},
		{
			name:      "fully paid closes",
			principal: 100000,
			payments:  []int64{30000, 70000},
			want:      Result{Outstanding: 0, Status: models.DebtStatusClosed},
		},
		{
			name:      "overpayment clamps outstanding at zero",
			principal: 100000,
			payments:  []int64{150000},
			want:      Result{Outstanding: 0, Status: models.DebtStatusClosed},
		},
		{
			name:      "past due date forces overdue over open",
			principal: 100000,
			dueDate:   datePtr(2023, time.January, 1),
			want:      Result{Outstanding: 100000, Status: models.DebtStatusOverdue},
		},
		{
			name:      "past due date forces overdue over partial",
			principal: 100000,
			payments:  []int64{20000},
			dueDate:   datePtr(2023, time.January, 1),
			want:      Result{Outstanding: 80000, Status: models.DebtStatusOverdue},
		},
		{
			name:      "closed wins over past due date",
			principal: 100000,
			payments:  []int64{100000},
			dueDate:   datePtr(2023, time.January, 1),
			want:      Result{Outstanding: 0, Status: models.DebtStatusClosed},
		},
		{
			name:      "future due date does not flip status",
			principal: 100000,
			payments:  []int64{20000},
			dueDate:   datePtr(2025, time.January, 1),
			want:      Result{Outstanding: 80000, Status: models.DebtStatusPartial},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.principal, tt.payments, tt.dueDate, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	due := datePtr(2023, time.June, 1)
	first := Compute(100000, []int64{10000, 20000}, due, now)
	second := Compute(100000, []int64{10000, 20000}, due, now)
	assert.Equal(t, first, second)
}
