package models

// Channel identifies a delivery transport for reminder notifications.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
	ChannelWebhook  Channel = "webhook"
)

// Known reports whether c is one of the supported channels.
func (c Channel) Known() bool {
	switch c {
	case ChannelEmail, ChannelTelegram, ChannelWebhook:
		return true
	}
	return false
}
