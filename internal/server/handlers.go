package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dompetapp/dompet/internal/dispatch"
	"github.com/dompetapp/dompet/internal/models"
)

type DispatchHandler struct {
	runner Runner
	log    zerolog.Logger
}

func NewDispatchHandler(runner Runner, log zerolog.Logger) *DispatchHandler {
	return &DispatchHandler{runner: runner, log: log.With().Str("component", "http").Logger()}
}

// Trigger runs the dispatch loop once and returns its summary. The trigger
// carries no payload; the run timestamp is taken here so the loop itself
// never reads the wall clock.
func (h *DispatchHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.Run(r.Context(), time.Now())
	if err != nil {
		if errors.Is(err, dispatch.ErrRunInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.log.Error().Err(err).Msg("dispatch trigger failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type DebtHandler struct {
	svc DebtService
}

func NewDebtHandler(svc DebtService) *DebtHandler { return &DebtHandler{svc: svc} }

func (h *DebtHandler) GetDebt(w http.ResponseWriter, r *http.Request) {
	debtID := mux.Vars(r)["debtId"]

	details, err := h.svc.Get(r.Context(), debtID, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *DebtHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	debtID := mux.Vars(r)["debtId"]

	var in struct {
		UserID        string     `json:"user_id"`
		Amount        int64      `json:"amount"`
		PaidAt        *time.Time `json:"paid_at,omitempty"`
		Method        string     `json:"method,omitempty"`
		TransactionID *string    `json:"transaction_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	payment := &models.DebtPayment{
		UserID:        in.UserID,
		DebtID:        debtID,
		TransactionID: in.TransactionID,
		Amount:        in.Amount,
		Method:        in.Method,
	}
	if in.PaidAt != nil {
		payment.PaidAt = *in.PaidAt
	}

	details, err := h.svc.RecordPayment(r.Context(), payment, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, details)
}

type LogHandler struct {
	logs LogReader
}

func NewLogHandler(logs LogReader) *LogHandler { return &LogHandler{logs: logs} }

func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	reminderID := mux.Vars(r)["reminderId"]
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	entries, err := h.logs.ListByReminder(r.Context(), reminderID, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.ReminderLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
