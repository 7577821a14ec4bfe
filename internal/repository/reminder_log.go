package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dompetapp/dompet/internal/database"
	"github.com/dompetapp/dompet/internal/models"
)

type ReminderLogRepository struct {
	db *database.DB
}

func NewReminderLogRepository(db *database.DB) *ReminderLogRepository {
	return &ReminderLogRepository{db: db}
}

// Append inserts one dispatch-attempt record. Logs are never updated or
// deleted here.
func (r *ReminderLogRepository) Append(ctx context.Context, entry *models.ReminderLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO reminder_logs (id, user_id, reminder_id, fired_at, status, response)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.ReminderID, entry.FiredAt, entry.Status, entry.Response,
	)
	return err
}

func (r *ReminderLogRepository) ListByReminder(ctx context.Context, reminderID, userID string) ([]*models.ReminderLog, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, user_id, reminder_id, fired_at, status, response
		 FROM reminder_logs WHERE reminder_id = $1 AND user_id = $2
		 ORDER BY fired_at DESC`,
		reminderID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.ReminderLog
	for rows.Next() {
		entry := &models.ReminderLog{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ReminderID,
			&entry.FiredAt, &entry.Status, &entry.Response); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
