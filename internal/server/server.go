// Package server exposes the dispatch trigger and the debt/reminder-log
// operator endpoints over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dompetapp/dompet/internal/debt"
	"github.com/dompetapp/dompet/internal/dispatch"
	"github.com/dompetapp/dompet/internal/models"
)

// Runner is the dispatch entry point triggered by the external scheduler.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*dispatch.Summary, error)
}

// DebtService records payments and derives debt status.
type DebtService interface {
	RecordPayment(ctx context.Context, payment *models.DebtPayment, now time.Time) (*debt.Details, error)
	Get(ctx context.Context, debtID string, now time.Time) (*debt.Details, error)
}

// LogReader exposes dispatch logs to operators.
type LogReader interface {
	ListByReminder(ctx context.Context, reminderID, userID string) ([]*models.ReminderLog, error)
}

// Pinger reports data-store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores groups the data-access dependencies of the HTTP surface.
type Stores struct {
	Reminders ReminderStore
	Debts     DebtStore
	Profiles  ProfileStore
	Logs      LogReader
}

// NewRouter wires all HTTP routes.
func NewRouter(runner Runner, debts DebtService, stores Stores, db Pinger, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	dispatchHandler := NewDispatchHandler(runner, log)
	debtHandler := NewDebtHandler(debts)
	logHandler := NewLogHandler(stores.Logs)
	healthHandler := NewHealthHandler(db)
	reminderHandler := NewReminderHandler(stores.Reminders)
	debtWriteHandler := NewDebtWriteHandler(stores.Debts)
	profileHandler := NewProfileHandler(stores.Profiles)

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// External scheduler trigger (cron hits this daily).
	router.HandleFunc("/api/jobs/reminders/dispatch", dispatchHandler.Trigger).Methods("POST")

	router.HandleFunc("/api/debts", debtWriteHandler.CreateDebt).Methods("POST")
	router.HandleFunc("/api/debts/{debtId}", debtHandler.GetDebt).Methods("GET")
	router.HandleFunc("/api/debts/{debtId}/payments", debtHandler.RecordPayment).Methods("POST")

	router.HandleFunc("/api/reminders", reminderHandler.CreateReminder).Methods("POST")
	router.HandleFunc("/api/reminders/{reminderId}", reminderHandler.DeleteReminder).Methods("DELETE")
	router.HandleFunc("/api/reminders/{reminderId}/logs", logHandler.ListLogs).Methods("GET")

	router.HandleFunc("/api/users/{userId}/reminders", reminderHandler.ListReminders).Methods("GET")
	router.HandleFunc("/api/users/{userId}/debts", debtWriteHandler.ListDebts).Methods("GET")
	router.HandleFunc("/api/users/{userId}/profile", profileHandler.UpsertProfile).Methods("PUT")

	return router
}
