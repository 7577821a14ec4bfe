package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dompetapp/dompet/internal/database"
	"github.com/dompetapp/dompet/internal/models"
)

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `id, user_id, kind, debt_id, title, message, channels, due_at, recur_rule, is_active, last_fired_at, created_at`

func scanReminder(row interface{ Scan(...any) error }) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var channels []string
	err := row.Scan(&reminder.ID, &reminder.UserID, &reminder.Kind, &reminder.DebtID,
		&reminder.Title, &reminder.Message, &channels, &reminder.DueAt,
		&reminder.RecurRule, &reminder.IsActive, &reminder.LastFiredAt, &reminder.CreatedAt)
	if err != nil {
		return nil, err
	}
	reminder.Channels = toChannels(channels)
	return reminder, nil
}

func toChannels(in []string) []models.Channel {
	out := make([]models.Channel, len(in))
	for i, c := range in {
		out[i] = models.Channel(c)
	}
	return out
}

func fromChannels(in []models.Channel) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = string(c)
	}
	return out
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (id, user_id, kind, debt_id, title, message, channels, due_at, recur_rule, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		reminder.ID, reminder.UserID, reminder.Kind, reminder.DebtID, reminder.Title,
		reminder.Message, fromChannels(reminder.Channels), reminder.DueAt,
		reminder.RecurRule, reminder.IsActive,
	).Scan(&reminder.CreatedAt)
}

func (r *ReminderRepository) GetByID(ctx context.Context, reminderID, userID string) (*models.Reminder, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1 AND user_id = $2`,
		reminderID, userID,
	)
	return scanReminder(row)
}

func (r *ReminderRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = $1 ORDER BY due_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET title = $1, message = $2, channels = $3, due_at = $4, recur_rule = $5, is_active = $6
		 WHERE id = $7 AND user_id = $8`,
		reminder.Title, reminder.Message, fromChannels(reminder.Channels), reminder.DueAt,
		reminder.RecurRule, reminder.IsActive, reminder.ID, reminder.UserID,
	)
	return err
}

func (r *ReminderRepository) Delete(ctx context.Context, reminderID, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminders WHERE id = $1 AND user_id = $2`,
		reminderID, userID,
	)
	return err
}

// ListDue returns every active reminder whose due_at has passed.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE is_active = true AND due_at <= $1
		 ORDER BY due_at ASC`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// Advance moves a recurring reminder to its next due timestamp, leaving it
// active.
func (r *ReminderRepository) Advance(ctx context.Context, reminderID string, nextDue, firedAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET due_at = $1, last_fired_at = $2 WHERE id = $3`,
		nextDue, firedAt, reminderID,
	)
	return err
}

// Deactivate retires a one-shot reminder after its firing.
func (r *ReminderRepository) Deactivate(ctx context.Context, reminderID string, firedAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET is_active = false, last_fired_at = $1 WHERE id = $2`,
		firedAt, reminderID,
	)
	return err
}
