package scheduler

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Notifier delivers race messages to the chat platform. All methods may
// fail (recipient unreachable, channel absent); callers log and continue,
// delivery failures are never fatal to race settlement.
type Notifier interface {
	// Announce posts a message to a guild's race channel
	Announce(ctx context.Context, guildID int64, message string) error

	// AnnounceEmbed posts a rich embed to a guild's race channel
	AnnounceEmbed(ctx context.Context, guildID int64, embed *discordgo.MessageEmbed) error

	// DirectMessage sends a private message to a user
	DirectMessage(ctx context.Context, userID int64, message string) error
}

// GuildLister enumerates the guilds races are scheduled for
type GuildLister interface {
	GuildIDs() []int64
}

// EventSink receives commentary events one at a time
type EventSink interface {
	Emit(ctx context.Context, event string) error
}

// EventSinkFunc adapts a function to the EventSink interface
type EventSinkFunc func(ctx context.Context, event string) error

func (f EventSinkFunc) Emit(ctx context.Context, event string) error {
	return f(ctx, event)
}
