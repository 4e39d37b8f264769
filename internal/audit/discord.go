package audit

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/storyweave/linksync/internal/logger"
)

// DiscordSink posts failure events to an ops channel so operators notice
// broken links without watching logs. Non-failure events are ignored.
type DiscordSink struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordSink creates a sink posting to the given channel
func NewDiscordSink(botToken, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordSink{session: session, channelID: channelID}, nil
}

// Record posts failure events; send errors are logged and swallowed
func (s *DiscordSink) Record(ctx context.Context, e Event) {
	if e.Type != EventTypeLinkFailed && e.Type != EventTypeCycleFailed {
		return
	}

	msg := fmt.Sprintf(":warning: `%s` %s", e.WorkerName, e.Type)
	if e.LinkID != "" {
		msg += fmt.Sprintf(" (link `%s`)", e.LinkID)
	}
	if detail, ok := e.Detail["error"]; ok {
		msg += fmt.Sprintf(": %v", detail)
	}

	if _, err := s.session.ChannelMessageSend(s.channelID, msg); err != nil {
		logger.FromContext(ctx).Warn("Failed to post audit event to Discord", "error", err)
	}
}
