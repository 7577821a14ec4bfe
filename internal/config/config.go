package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is parsed from DOMPET_-prefixed environment variables.
type Config struct {
	DatabaseURI string `envconfig:"DATABASE_URI"`
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8080"`

	// Channel transports. A channel with no credentials configured is left
	// out of the dispatcher registry; reminders targeting it log a failed
	// channel outcome.
	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`
	EmailAPIURL   string `envconfig:"EMAIL_API_URL" default:"https://api.resend.com"`
	EmailAPIKey   string `envconfig:"EMAIL_API_KEY"`
	EmailFrom     string `envconfig:"EMAIL_FROM" default:"reminders@dompet.app"`

	// Daily dispatch anchor, local to Timezone.
	DispatchHour int    `envconfig:"DISPATCH_HOUR" default:"8"`
	Timezone     string `envconfig:"TIMEZONE" default:"Asia/Jakarta"`
}

func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOMPET", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DispatchHour < 0 || cfg.DispatchHour > 23 {
		return nil, fmt.Errorf("DISPATCH_HOUR must be 0-23, got %d", cfg.DispatchHour)
	}

	return &cfg, nil
}
