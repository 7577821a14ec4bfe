package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dompetapp/dompet/internal/models"
	"github.com/dompetapp/dompet/internal/notify"
)

var runAt = time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC)

// --- Fakes ---

type fakeReminderStore struct {
	due     []*models.Reminder
	listErr error

	advanced    map[string]time.Time // reminder id -> next due
	deactivated []string
	advanceErr  error
}

func (f *fakeReminderStore) ListDue(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakeReminderStore) Advance(ctx context.Context, id string, nextDue, firedAt time.Time) error {
	if f.advanceErr != nil {
		return f.advanceErr
	}
	if f.advanced == nil {
		f.advanced = map[string]time.Time{}
	}
	f.advanced[id] = nextDue
	return nil
}

func (f *fakeReminderStore) Deactivate(ctx context.Context, id string, firedAt time.Time) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeLogStore struct {
	entries   []*models.ReminderLog
	appendErr error
}

func (f *fakeLogStore) Append(ctx context.Context, e *models.ReminderLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLogStore) byReminder(id string) []*models.ReminderLog {
	var out []*models.ReminderLog
	for _, e := range f.entries {
		if e.ReminderID == id {
			out = append(out, e)
		}
	}
	return out
}

type fakeProfileStore struct {
	profiles map[string]*models.Profile
	err      error
}

func (f *fakeProfileStore) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("profile %s not found", userID)
}

type fakeLocker struct {
	held     bool
	lockErr  error
	unlocked int
}

func (f *fakeLocker) TryLock(ctx context.Context) (bool, error) {
	if f.lockErr != nil {
		return false, f.lockErr
	}
	return !f.held, nil
}

func (f *fakeLocker) Unlock(ctx context.Context) error {
	f.unlocked++
	return nil
}

type fakeDispatcher struct {
	channel   models.Channel
	err       error
	panicWith any
	delivered []notify.Notification
}

func (f *fakeDispatcher) Channel() models.Channel { return f.channel }

func (f *fakeDispatcher) Deliver(ctx context.Context, n notify.Notification) error {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.delivered = append(f.delivered, n)
	return f.err
}

// --- Helpers ---

func chatID(id int64) *int64 { return &id }

func testProfile() *models.Profile {
	return &models.Profile{
		UserID:         "user-1",
		Email:          "user@example.com",
		TelegramChatID: chatID(42),
		WebhookURL:     "https://hooks.example.com/r",
	}
}

func dueReminder(id, rule string, channels ...models.Channel) *models.Reminder {
	return &models.Reminder{
		ID:        id,
		UserID:    "user-1",
		Kind:      models.ReminderKindGeneric,
		Title:     "Pay the rent",
		Message:   "It is due",
		Channels:  channels,
		DueAt:     time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC),
		RecurRule: rule,
		IsActive:  true,
	}
}

type env struct {
	reminders *fakeReminderStore
	logs      *fakeLogStore
	profiles  *fakeProfileStore
	locker    *fakeLocker
	email     *fakeDispatcher
	telegram  *fakeDispatcher
	webhook   *fakeDispatcher
	runner    *Runner
}

func newEnv(due ...*models.Reminder) *env {
	e := &env{
		reminders: &fakeReminderStore{due: due},
		logs:      &fakeLogStore{},
		profiles:  &fakeProfileStore{profiles: map[string]*models.Profile{"user-1": testProfile()}},
		locker:    &fakeLocker{},
		email:     &fakeDispatcher{channel: models.ChannelEmail},
		telegram:  &fakeDispatcher{channel: models.ChannelTelegram},
		webhook:   &fakeDispatcher{channel: models.ChannelWebhook},
	}
	e.runner = NewRunner(
		e.reminders, e.logs, e.profiles, e.locker,
		notify.Registry(e.email, e.telegram, e.webhook),
		zerolog.Nop(),
	)
	return e
}

// --- Tests ---

// End-to-end scenario: a weekly reminder on email+webhook fires, both
// channels are attempted, the log reads sent, due_at advances one week, and
// the reminder stays active.
func TestRun_WeeklyReminderAdvances(t *testing.T) {
	rem := dueReminder("rem-1", "FREQ=WEEKLY", models.ChannelEmail, models.ChannelWebhook)
	e := newEnv(rem)

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, Result{ID: "rem-1", Status: "success"}, summary.Results[0])

	assert.Len(t, e.email.delivered, 1)
	assert.Len(t, e.webhook.delivered, 1)
	assert.Empty(t, e.telegram.delivered)

	logs := e.logs.byReminder("rem-1")
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusSent, logs[0].Status)
	assert.Equal(t, runAt, logs[0].FiredAt)

	next, advanced := e.reminders.advanced["rem-1"]
	require.True(t, advanced)
	assert.Equal(t, time.Date(2024, time.January, 8, 8, 0, 0, 0, time.UTC), next)
	assert.Empty(t, e.reminders.deactivated)
}

func TestRun_OneShotReminderDeactivates(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "", models.ChannelEmail))

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	assert.Equal(t, "success", summary.Results[0].Status)
	assert.Equal(t, []string{"rem-1"}, e.reminders.deactivated)
	assert.Empty(t, e.reminders.advanced)
}

func TestRun_ChannelFailureDoesNotBlockOtherChannels(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "", models.ChannelEmail, models.ChannelWebhook))
	e.email.err = errors.New("smtp refused")

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	// Webhook was still attempted after the email failure.
	assert.Len(t, e.webhook.delivered, 1)

	// One channel failing is not a reminder failure, and the per-channel
	// outcomes land in the log response.
	assert.Equal(t, "success", summary.Results[0].Status)
	logs := e.logs.byReminder("rem-1")
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusSent, logs[0].Status)

	outcomes := logs[0].Response["channels"].([]channelOutcome)
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].OK)
	assert.Contains(t, outcomes[0].Error, "smtp refused")
	assert.True(t, outcomes[1].OK)
}

func TestRun_AllChannelsFailedLogsFailed(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "FREQ=DAILY", models.ChannelEmail, models.ChannelWebhook))
	e.email.err = errors.New("smtp refused")
	e.webhook.err = errors.New("410 gone")

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	assert.Equal(t, "failed", summary.Results[0].Status)
	logs := e.logs.byReminder("rem-1")
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusFailed, logs[0].Status)

	// The reminder still advances: re-firing a permanently broken channel
	// forever would pin it due.
	assert.Contains(t, e.reminders.advanced, "rem-1")
}

func TestRun_ChannelOrderFollowsReminder(t *testing.T) {
	var order []models.Channel
	e := newEnv(dueReminder("rem-1", "", models.ChannelWebhook, models.ChannelEmail))
	e.runner.dispatchers = notify.Registry(
		&orderedDispatcher{models.ChannelEmail, &order},
		&orderedDispatcher{models.ChannelWebhook, &order},
	)

	_, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)
	assert.Equal(t, []models.Channel{models.ChannelWebhook, models.ChannelEmail}, order)
}

type orderedDispatcher struct {
	ch    models.Channel
	order *[]models.Channel
}

func (d *orderedDispatcher) Channel() models.Channel { return d.ch }
func (d *orderedDispatcher) Deliver(ctx context.Context, n notify.Notification) error {
	*d.order = append(*d.order, d.ch)
	return nil
}

func TestRun_UnconfiguredChannelIsAFailedOutcome(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "", models.ChannelTelegram))
	e.runner.dispatchers = notify.Registry(e.email, e.webhook) // no telegram

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	// Telegram was the only channel, so the whole attempt failed.
	assert.Equal(t, "failed", summary.Results[0].Status)
	logs := e.logs.byReminder("rem-1")
	require.Len(t, logs, 1)
	outcomes := logs[0].Response["channels"].([]channelOutcome)
	assert.Contains(t, outcomes[0].Error, "not configured")
}

// One reminder blowing up must not abort the rest of the run.
func TestRun_FailureIsolationAcrossReminders(t *testing.T) {
	bad := dueReminder("rem-bad", "", models.ChannelEmail)
	bad.UserID = "user-missing" // profile lookup will fail
	good := dueReminder("rem-good", "", models.ChannelEmail)

	e := newEnv(bad, good)

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, "failed", summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Error, "resolve profile")
	assert.Equal(t, "success", summary.Results[1].Status)

	// The bad reminder gets a failed log row; the good one a sent row.
	require.Len(t, e.logs.byReminder("rem-bad"), 1)
	assert.Equal(t, models.LogStatusFailed, e.logs.byReminder("rem-bad")[0].Status)
	require.Len(t, e.logs.byReminder("rem-good"), 1)
	assert.Equal(t, models.LogStatusSent, e.logs.byReminder("rem-good")[0].Status)
}

func TestRun_PanickingDispatcherIsContained(t *testing.T) {
	e := newEnv(
		dueReminder("rem-1", "", models.ChannelEmail, models.ChannelWebhook),
		dueReminder("rem-2", "", models.ChannelWebhook),
	)
	e.email.panicWith = "transport exploded"

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	// The panic is that channel's failure; webhook still ran for both.
	assert.Equal(t, "success", summary.Results[0].Status)
	assert.Equal(t, "success", summary.Results[1].Status)
	assert.Len(t, e.webhook.delivered, 2)
}

func TestRun_SingleLogRowPerReminderEvenOnLateFailure(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "FREQ=DAILY", models.ChannelEmail))
	e.reminders.advanceErr = errors.New("deadlock detected")

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	assert.Equal(t, "failed", summary.Results[0].Status)
	assert.Len(t, e.logs.byReminder("rem-1"), 1, "transition failure after logging must not add a second row")
}

func TestRun_LogAppendFailureFailsTheReminderOnly(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "", models.ChannelEmail))
	e.logs.appendErr = errors.New("disk full")

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)
	assert.Equal(t, "failed", summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Error, "append log")
}

func TestRun_ListDueFailureFailsTheRun(t *testing.T) {
	e := newEnv()
	e.reminders.listErr = errors.New("connection refused")

	_, err := e.runner.Run(context.Background(), runAt)
	assert.Error(t, err)
	assert.Equal(t, 1, e.locker.unlocked, "lock must be released on a failed run")
}

func TestRun_HeldLockReturnsErrRunInProgress(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "", models.ChannelEmail))
	e.locker.held = true

	_, err := e.runner.Run(context.Background(), runAt)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, e.logs.entries)
	assert.Equal(t, 0, e.locker.unlocked)
}

func TestRun_EmptyDueListIsAnEmptySummary(t *testing.T) {
	e := newEnv()

	summary, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, summary.Results)
	assert.Equal(t, 1, e.locker.unlocked)
}

func TestRun_NotificationCarriesProfileAddressing(t *testing.T) {
	e := newEnv(dueReminder("rem-1", "", models.ChannelEmail))

	_, err := e.runner.Run(context.Background(), runAt)
	require.NoError(t, err)

	require.Len(t, e.email.delivered, 1)
	n := e.email.delivered[0]
	assert.Equal(t, "user@example.com", n.EmailTo)
	assert.Equal(t, int64(42), n.TelegramChatID)
	assert.Equal(t, "https://hooks.example.com/r", n.WebhookURL)
	assert.Equal(t, "Pay the rent", n.Title)
}
