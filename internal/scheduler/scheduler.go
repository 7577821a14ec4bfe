// Package scheduler triggers the reminder dispatch loop once a day at a
// configured local time.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dompetapp/dompet/internal/dispatch"
)

// Runner is the dispatch entry point the scheduler drives.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*dispatch.Summary, error)
}

type Scheduler struct {
	runner   Runner
	hour     int
	loc      *time.Location
	notifyCh chan struct{}
	log      zerolog.Logger
}

func New(runner Runner, hour int, loc *time.Location, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		hour:     hour,
		loc:      loc,
		notifyCh: make(chan struct{}, 1),
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Notify triggers an immediate run. Non-blocking if a run is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// A trigger is already pending, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info().Int("hour", s.hour).Str("timezone", s.loc.String()).Msg("scheduler started")

	for {
		now := time.Now().In(s.loc)
		timer := time.NewTimer(s.nextAnchor(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info().Msg("scheduler stopped")
			return
		case <-timer.C:
			s.run(ctx, time.Now())
		case <-s.notifyCh:
			timer.Stop()
			s.log.Info().Msg("scheduler triggered by notification")
			s.run(ctx, time.Now())
		}
	}
}

// nextAnchor is the next occurrence of the configured hour in the
// scheduler's timezone, strictly after now.
func (s *Scheduler) nextAnchor(now time.Time) time.Time {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, s.loc)
	if !anchor.After(now) {
		anchor = anchor.AddDate(0, 0, 1)
	}
	return anchor
}

func (s *Scheduler) run(ctx context.Context, now time.Time) {
	summary, err := s.runner.Run(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("dispatch run failed")
		return
	}
	s.log.Info().Int("processed", summary.Processed).Msg("dispatch run finished")
}
