package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dompetapp/dompet/internal/models"
)

func TestTelegramDeliver_MissingChatIDIsAFailure(t *testing.T) {
	d := NewTelegram(nil)
	assert.Equal(t, models.ChannelTelegram, d.Channel())

	// No chat id on the profile fails before any API call is made.
	err := d.Deliver(context.Background(), testNotification(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat id")
}
