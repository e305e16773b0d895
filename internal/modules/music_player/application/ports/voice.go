package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceGateway joins and leaves voice channels on the chat gateway.
type VoiceGateway interface {
	// JoinChannel connects the bot to the specified voice channel.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects the bot from its voice channel.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}

// VoiceStateProvider exposes the gateway's view of voice state and the
// capability probes the join guard needs.
type VoiceStateProvider interface {
	// UserVoiceChannel returns the voice channel the user occupies, or 0.
	UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)

	// BotVoiceChannel returns the voice channel the bot occupies, or 0.
	BotVoiceChannel(guildID snowflake.ID) snowflake.ID

	// MissingVoicePermissions returns the names of join/speak capabilities
	// the bot lacks in the given voice channel.
	MissingVoicePermissions(guildID, channelID snowflake.ID) ([]string, error)

	// MissingTextPermissions returns the names of view/send capabilities the
	// bot lacks in the given text channel.
	MissingTextPermissions(guildID, channelID snowflake.ID) ([]string, error)

	// ChannelHasRoom reports whether the voice channel has a free slot.
	ChannelHasRoom(guildID, channelID snowflake.ID) (bool, error)

	// CanMoveMembers reports whether the bot may bypass the capacity check.
	CanMoveMembers(guildID snowflake.ID) bool
}

// Notifier sends control messages to a text channel.
type Notifier interface {
	// Send posts a plain control message and returns its message ID.
	Send(channelID snowflake.ID, message string) (snowflake.ID, error)

	// RefreshPanel redraws the guild session's control-panel message. It
	// acquires the session lock to snapshot state; callers must not hold it.
	RefreshPanel(guildID, messageID snowflake.ID) error
}
