// Package dispatch implements the reminder dispatch loop. One Run processes
// every currently-due active reminder to completion, isolating failures per
// reminder.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dompetapp/dompet/internal/models"
	"github.com/dompetapp/dompet/internal/notify"
	"github.com/dompetapp/dompet/internal/recur"
)

// ErrRunInProgress is returned when another run already holds the run lock.
// Overlapping scheduler triggers would double-fire reminders otherwise.
var ErrRunInProgress = errors.New("dispatch run already in progress")

type ReminderStore interface {
	ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error)
	Advance(ctx context.Context, reminderID string, nextDue, firedAt time.Time) error
	Deactivate(ctx context.Context, reminderID string, firedAt time.Time) error
}

type LogStore interface {
	Append(ctx context.Context, entry *models.ReminderLog) error
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
}

// RunLocker guards against concurrent runs. TryLock returns false without
// error when the lock is held elsewhere.
type RunLocker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Result is the per-reminder outcome reported in the run summary.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" | "failed"
	Error  string `json:"error,omitempty"`
}

// Summary is the JSON-shaped response handed back to the scheduler trigger.
type Summary struct {
	Processed int      `json:"processed"`
	Results   []Result `json:"results"`
}

type Runner struct {
	reminders   ReminderStore
	logs        LogStore
	profiles    ProfileStore
	locker      RunLocker
	dispatchers map[models.Channel]notify.Dispatcher
	log         zerolog.Logger
}

func NewRunner(
	reminders ReminderStore,
	logs LogStore,
	profiles ProfileStore,
	locker RunLocker,
	dispatchers map[models.Channel]notify.Dispatcher,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		reminders:   reminders,
		logs:        logs,
		profiles:    profiles,
		locker:      locker,
		dispatchers: dispatchers,
		log:         log.With().Str("component", "dispatch").Logger(),
	}
}

// Run processes all reminders due at now, sequentially. now is injected by
// the caller, never read from the wall clock here.
//
// The run does not fail atomically: a failure while processing one reminder
// is recorded as a failed result for that reminder only and the loop moves
// on. Only a failed due-list fetch or a held run lock fails the whole run.
func (r *Runner) Run(ctx context.Context, now time.Time) (*Summary, error) {
	ok, err := r.locker.TryLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := r.locker.Unlock(ctx); err != nil {
			r.log.Error().Err(err).Msg("release run lock")
		}
	}()

	due, err := r.reminders.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}

	summary := &Summary{Results: make([]Result, 0, len(due))}
	for _, rem := range due {
		res := r.processOne(ctx, rem, now)
		summary.Results = append(summary.Results, res)
	}
	summary.Processed = len(summary.Results)

	r.log.Info().
		Time("run_at", now).
		Int("processed", summary.Processed).
		Msg("dispatch run complete")

	return summary, nil
}

// channelOutcome is one channel's delivery attempt, recorded in the log row.
type channelOutcome struct {
	Channel models.Channel `json:"channel"`
	OK      bool           `json:"ok"`
	Error   string         `json:"error,omitempty"`
}

// processOne takes a single reminder through dispatch, logging and its
// recurrence transition. It never returns an error or panics: every failure
// mode collapses into a failed Result so one reminder cannot abort the run.
func (r *Runner) processOne(ctx context.Context, rem *models.Reminder, now time.Time) (res Result) {
	logged := false

	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Str("reminder_id", rem.ID).Interface("panic", p).Msg("reminder processing panicked")
			res = r.fail(ctx, rem, now, logged, fmt.Errorf("panic: %v", p))
		}
	}()

	profile, err := r.profiles.Get(ctx, rem.UserID)
	if err != nil {
		return r.fail(ctx, rem, now, logged, fmt.Errorf("resolve profile: %w", err))
	}

	n := notification(rem, profile)
	outcomes := r.deliver(ctx, rem, n)

	status := models.LogStatusSent
	if allFailed(outcomes) {
		status = models.LogStatusFailed
	}

	if err := r.logs.Append(ctx, &models.ReminderLog{
		UserID:     rem.UserID,
		ReminderID: rem.ID,
		FiredAt:    now,
		Status:     status,
		Response:   map[string]any{"channels": outcomes},
	}); err != nil {
		return r.fail(ctx, rem, now, logged, fmt.Errorf("append log: %w", err))
	}
	logged = true

	if err := r.transition(ctx, rem, now); err != nil {
		return r.fail(ctx, rem, now, logged, err)
	}

	if status == models.LogStatusFailed {
		return Result{ID: rem.ID, Status: "failed", Error: "all channels failed"}
	}
	return Result{ID: rem.ID, Status: "success"}
}

// deliver attempts every channel in the reminder's list order. One channel's
// failure never prevents the next attempt.
func (r *Runner) deliver(ctx context.Context, rem *models.Reminder, n notify.Notification) []channelOutcome {
	outcomes := make([]channelOutcome, 0, len(rem.Channels))
	for _, ch := range rem.Channels {
		out := channelOutcome{Channel: ch, OK: true}

		d, exists := r.dispatchers[ch]
		if !exists {
			out.OK = false
			out.Error = fmt.Sprintf("channel %q not configured", ch)
		} else if err := r.deliverOne(ctx, d, n); err != nil {
			out.OK = false
			out.Error = err.Error()
		}

		if !out.OK {
			r.log.Warn().
				Str("reminder_id", rem.ID).
				Str("channel", string(ch)).
				Str("error", out.Error).
				Msg("channel delivery failed")
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// deliverOne isolates a single dispatcher call so a panicking transport is
// contained as that channel's failure.
func (r *Runner) deliverOne(ctx context.Context, d notify.Dispatcher, n notify.Notification) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return d.Deliver(ctx, n)
}

// transition advances a recurring reminder to its next due timestamp or
// deactivates a one-shot, stamping last_fired_at either way.
func (r *Runner) transition(ctx context.Context, rem *models.Reminder, now time.Time) error {
	if rem.IsRecurring() {
		next := recur.Next(rem.DueAt, rem.RecurRule)
		if err := r.reminders.Advance(ctx, rem.ID, next, now); err != nil {
			return fmt.Errorf("advance reminder: %w", err)
		}
		r.log.Debug().Str("reminder_id", rem.ID).Time("next_due", next).Msg("reminder advanced")
		return nil
	}

	if err := r.reminders.Deactivate(ctx, rem.ID, now); err != nil {
		return fmt.Errorf("deactivate reminder: %w", err)
	}
	r.log.Debug().Str("reminder_id", rem.ID).Msg("one-shot reminder deactivated")
	return nil
}

// fail records a processing failure for one reminder. At most one log row is
// ever written per reminder per run: if the sent/failed row already landed,
// the error is only reflected in the run summary.
func (r *Runner) fail(ctx context.Context, rem *models.Reminder, now time.Time, alreadyLogged bool, cause error) Result {
	r.log.Error().Err(cause).Str("reminder_id", rem.ID).Msg("reminder processing failed")

	if !alreadyLogged {
		logErr := r.logs.Append(ctx, &models.ReminderLog{
			UserID:     rem.UserID,
			ReminderID: rem.ID,
			FiredAt:    now,
			Status:     models.LogStatusFailed,
			Response:   map[string]any{"error": cause.Error()},
		})
		if logErr != nil {
			r.log.Error().Err(logErr).Str("reminder_id", rem.ID).Msg("failed to append failure log")
		}
	}

	return Result{ID: rem.ID, Status: "failed", Error: cause.Error()}
}

func notification(rem *models.Reminder, profile *models.Profile) notify.Notification {
	n := notify.Notification{
		ReminderID: rem.ID,
		UserID:     rem.UserID,
		Title:      rem.Title,
		Message:    rem.Message,
		DueAt:      rem.DueAt,
		EmailTo:    profile.Email,
		WebhookURL: profile.WebhookURL,
	}
	if profile.TelegramChatID != nil {
		n.TelegramChatID = *profile.TelegramChatID
	}
	return n
}

func allFailed(outcomes []channelOutcome) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, o := range outcomes {
		if o.OK {
			return false
		}
	}
	return true
}
