package chat

import (
	"coinbot/internal/providers"
	"coinbot/internal/structures"
)

// ChannelBroadcaster announces a message in every configured channel.
// Delivery failures are logged and do not stop the remaining channels.
type ChannelBroadcaster struct {
	sender   Sender
	channels []string
	logger   providers.Logger
}

func NewChannelBroadcaster(sender Sender, conf *structures.Config, logger providers.Logger) *ChannelBroadcaster {
	channels := make([]string, 0, len(conf.Bot.Channels))
	for _, ch := range conf.Bot.Channels {
		if ch = normalizeChannel(ch); ch != "" {
			channels = append(channels, ch)
		}
	}
	return &ChannelBroadcaster{sender: sender, channels: channels, logger: logger}
}

func (b *ChannelBroadcaster) Broadcast(text string) {
	for _, ch := range b.channels {
		if err := b.sender.Action(ch, text); err != nil {
			b.logger.Warnf(providers.TypeChat, "Broadcast to #%s failed: %s", ch, err)
		}
	}
}
