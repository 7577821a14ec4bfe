package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification(url string) Notification {
	return Notification{
		ReminderID: "rem-1",
		UserID:     "user-1",
		Title:      "Pay the rent",
		Message:    "It is due",
		DueAt:      time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC),
		WebhookURL: url,
	}
}

func TestWebhookDeliver_PostsExpectedPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewWebhook()
	err := d.Deliver(context.Background(), testNotification(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, "reminder", got.Type)
	assert.Equal(t, "rem-1", got.ReminderID)
	assert.Equal(t, "Pay the rent", got.Title)
	assert.Equal(t, "It is due", got.Message)
	assert.Equal(t, "2024-01-01T08:00:00Z", got.DueAt)
}

func TestWebhookDeliver_Non2xxIsAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewWebhook()
	err := d.Deliver(context.Background(), testNotification(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookDeliver_MissingURLIsAFailure(t *testing.T) {
	d := NewWebhook()
	err := d.Deliver(context.Background(), testNotification(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook URL")
}
