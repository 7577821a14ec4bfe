package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dompetapp/dompet/internal/models"
)

// ReminderStore is the reminder lifecycle surface: reminders are created and
// deleted by user action, the dispatch loop only fires them.
type ReminderStore interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	GetByUserID(ctx context.Context, userID string) ([]*models.Reminder, error)
	Delete(ctx context.Context, reminderID, userID string) error
}

type DebtStore interface {
	Create(ctx context.Context, debt *models.Debt) error
	GetByUserID(ctx context.Context, userID string) ([]*models.Debt, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, profile *models.Profile) error
}

type ReminderHandler struct {
	store ReminderStore
}

func NewReminderHandler(store ReminderStore) *ReminderHandler { return &ReminderHandler{store: store} }

func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID    string           `json:"user_id"`
		Kind      string           `json:"kind,omitempty"`
		DebtID    *string          `json:"debt_id,omitempty"`
		Title     string           `json:"title"`
		Message   string           `json:"message,omitempty"`
		Channels  []models.Channel `json:"channels"`
		DueAt     time.Time        `json:"due_at"`
		RecurRule string           `json:"recur_rule,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.UserID == "" || in.Title == "" {
		http.Error(w, "user_id and title are required", http.StatusBadRequest)
		return
	}
	if len(in.Channels) == 0 {
		http.Error(w, "at least one channel is required", http.StatusBadRequest)
		return
	}
	for _, ch := range in.Channels {
		if !ch.Known() {
			http.Error(w, fmt.Sprintf("unknown channel %q", ch), http.StatusBadRequest)
			return
		}
	}

	kind := models.ReminderKind(in.Kind)
	if kind == "" {
		kind = models.ReminderKindGeneric
	}

	reminder := &models.Reminder{
		UserID:    in.UserID,
		Kind:      kind,
		DebtID:    in.DebtID,
		Title:     in.Title,
		Message:   in.Message,
		Channels:  in.Channels,
		DueAt:     in.DueAt,
		RecurRule: in.RecurRule,
		IsActive:  true,
	}
	if err := h.store.Create(r.Context(), reminder); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, reminder)
}

func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	reminders, err := h.store.GetByUserID(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	reminderID := mux.Vars(r)["reminderId"]
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), reminderID, userID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type DebtWriteHandler struct {
	store DebtStore
}

func NewDebtWriteHandler(store DebtStore) *DebtWriteHandler { return &DebtWriteHandler{store: store} }

func (h *DebtWriteHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID         string               `json:"user_id"`
		Direction      models.DebtDirection `json:"direction"`
		CounterpartyID string               `json:"counterparty_id"`
		Principal      int64                `json:"principal"`
		Currency       string               `json:"currency"`
		StartDate      time.Time            `json:"start_date"`
		DueDate        *time.Time           `json:"due_date,omitempty"`
		Notes          string               `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.Direction != models.DebtDirectionReceivable && in.Direction != models.DebtDirectionPayable {
		http.Error(w, "direction must be receivable or payable", http.StatusBadRequest)
		return
	}
	if in.Principal <= 0 {
		http.Error(w, "principal must be positive", http.StatusBadRequest)
		return
	}

	debt := &models.Debt{
		UserID:         in.UserID,
		Direction:      in.Direction,
		CounterpartyID: in.CounterpartyID,
		Principal:      in.Principal,
		Currency:       in.Currency,
		StartDate:      in.StartDate,
		DueDate:        in.DueDate,
		Status:         models.DebtStatusOpen,
		Notes:          in.Notes,
	}
	if err := h.store.Create(r.Context(), debt); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (h *DebtWriteHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	debts, err := h.store.GetByUserID(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if debts == nil {
		debts = []*models.Debt{}
	}
	writeJSON(w, http.StatusOK, debts)
}

type ProfileHandler struct {
	store ProfileStore
}

func NewProfileHandler(store ProfileStore) *ProfileHandler { return &ProfileHandler{store: store} }

func (h *ProfileHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var in struct {
		Email           string `json:"email"`
		FullName        string `json:"full_name,omitempty"`
		DefaultCurrency string `json:"default_currency,omitempty"`
		Timezone        string `json:"timezone,omitempty"`
		TelegramChatID  *int64 `json:"telegram_chat_id,omitempty"`
		WebhookURL      string `json:"webhook_url,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if in.Email == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}
	if in.DefaultCurrency == "" {
		in.DefaultCurrency = "IDR"
	}
	if in.Timezone == "" {
		in.Timezone = "Asia/Jakarta"
	}

	profile := &models.Profile{
		UserID:          userID,
		Email:           in.Email,
		FullName:        in.FullName,
		DefaultCurrency: in.DefaultCurrency,
		Timezone:        in.Timezone,
		TelegramChatID:  in.TelegramChatID,
		WebhookURL:      in.WebhookURL,
	}
	if err := h.store.Upsert(r.Context(), profile); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
