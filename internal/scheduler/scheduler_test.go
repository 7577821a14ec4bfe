package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dompetapp/dompet/internal/dispatch"
)

type recordingRunner struct {
	runs chan time.Time
}

func (r *recordingRunner) Run(ctx context.Context, now time.Time) (*dispatch.Summary, error) {
	r.runs <- now
	return &dispatch.Summary{}, nil
}

func TestNextAnchor(t *testing.T) {
	loc := time.UTC
	s := New(nil, 8, loc, zerolog.Nop())

	// Before the anchor hour: today.
	now := time.Date(2024, time.January, 2, 6, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, time.January, 2, 8, 0, 0, 0, loc), s.nextAnchor(now))

	// At or after the anchor hour: tomorrow.
	now = time.Date(2024, time.January, 2, 8, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, time.January, 3, 8, 0, 0, 0, loc), s.nextAnchor(now))

	now = time.Date(2024, time.January, 2, 23, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2024, time.January, 3, 8, 0, 0, 0, loc), s.nextAnchor(now))
}

func TestNotifyTriggersImmediateRun(t *testing.T) {
	runner := &recordingRunner{runs: make(chan time.Time, 1)}
	s := New(runner, 8, time.UTC, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)

	s.Notify()

	select {
	case <-runner.runs:
	case <-time.After(2 * time.Second):
		require.Fail(t, "scheduler did not run after Notify")
	}
}

func TestNotifyIsNonBlockingWhenPending(t *testing.T) {
	s := New(nil, 8, time.UTC, zerolog.Nop())

	// Second call must not block even though nothing drains the channel.
	s.Notify()
	s.Notify()
}
