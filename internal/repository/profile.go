package repository

import (
	"context"

	"github.com/dompetapp/dompet/internal/database"
	"github.com/dompetapp/dompet/internal/models"
)

type ProfileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id, email, full_name, default_currency, timezone, telegram_chat_id, webhook_url, created_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&profile.UserID, &profile.Email, &profile.FullName, &profile.DefaultCurrency,
		&profile.Timezone, &profile.TelegramChatID, &profile.WebhookURL, &profile.CreatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, email, full_name, default_currency, timezone, telegram_chat_id, webhook_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			default_currency = EXCLUDED.default_currency,
			timezone = EXCLUDED.timezone,
			telegram_chat_id = EXCLUDED.telegram_chat_id,
			webhook_url = EXCLUDED.webhook_url
		 RETURNING created_at`,
		profile.UserID, profile.Email, profile.FullName, profile.DefaultCurrency,
		profile.Timezone, profile.TelegramChatID, profile.WebhookURL,
	).Scan(&profile.CreatedAt)
}
