package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dompetapp/dompet/internal/config"
	"github.com/dompetapp/dompet/internal/database"
	"github.com/dompetapp/dompet/internal/debt"
	"github.com/dompetapp/dompet/internal/dispatch"
	"github.com/dompetapp/dompet/internal/logger"
	"github.com/dompetapp/dompet/internal/notify"
	"github.com/dompetapp/dompet/internal/repository"
	"github.com/dompetapp/dompet/internal/scheduler"
	"github.com/dompetapp/dompet/internal/server"
)

func main() {
	log := logger.New("dompetd")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.DatabaseURI == "" {
		log.Fatal().Msg("DOMPET_DATABASE_URI is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to database")

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories
	reminderRepo := repository.NewReminderRepository(db)
	logRepo := repository.NewReminderLogRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	paymentRepo := repository.NewDebtPaymentRepository(db)
	runLock := repository.NewRunLock(db)

	// Channel dispatchers. A channel without credentials stays unregistered;
	// reminders targeting it get a failed channel outcome in the log.
	var dispatchers []notify.Dispatcher
	dispatchers = append(dispatchers, notify.NewWebhook())
	if cfg.EmailAPIKey != "" {
		dispatchers = append(dispatchers, notify.NewEmail(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom))
	} else {
		log.Warn().Msg("email channel not configured")
	}
	if cfg.TelegramToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create telegram api")
		}
		dispatchers = append(dispatchers, notify.NewTelegram(api))
	} else {
		log.Warn().Msg("telegram channel not configured")
	}

	runner := dispatch.NewRunner(reminderRepo, logRepo, profileRepo, runLock, notify.Registry(dispatchers...), log)
	debtService := debt.NewService(debtRepo, paymentRepo, log)

	// In-process daily trigger alongside the HTTP one.
	sched := scheduler.New(runner, cfg.DispatchHour, loc, log)
	go sched.Start(ctx)

	router := server.NewRouter(runner, debtService, server.Stores{
		Reminders: reminderRepo,
		Debts:     debtRepo,
		Profiles:  profileRepo,
		Logs:      logRepo,
	}, db, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Int("port", cfg.HTTPPort).Msg("starting http server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}
}
