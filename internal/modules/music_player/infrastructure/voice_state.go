package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
)

// VoiceStateProvider provides Discord voice state information and the
// capability probes the join guard needs.
type VoiceStateProvider struct {
	session *discordgo.Session
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		session: session,
	}
}

// UserVoiceChannel returns the voice channel ID that the user is currently in.
// Returns 0 if the user is not in a voice channel.
func (v *VoiceStateProvider) UserVoiceChannel(
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return 0, err
			}
			return channelID, nil
		}
	}

	return 0, nil
}

// BotVoiceChannel returns the voice channel the bot occupies, or 0.
func (v *VoiceStateProvider) BotVoiceChannel(guildID snowflake.ID) snowflake.ID {
	channelID, err := v.UserVoiceChannel(guildID, v.botID())
	if err != nil {
		return 0
	}
	return channelID
}

// MissingVoicePermissions returns the names of join/speak capabilities the
// bot lacks in the given voice channel.
func (v *VoiceStateProvider) MissingVoicePermissions(
	_, channelID snowflake.ID,
) ([]string, error) {
	perms, err := v.session.State.UserChannelPermissions(
		v.session.State.User.ID,
		channelID.String(),
	)
	if err != nil {
		return nil, err
	}

	var missing []string
	if perms&discordgo.PermissionVoiceConnect == 0 {
		missing = append(missing, "Connect")
	}
	if perms&discordgo.PermissionVoiceSpeak == 0 {
		missing = append(missing, "Speak")
	}
	return missing, nil
}

// MissingTextPermissions returns the names of view/send capabilities the bot
// lacks in the given text channel.
func (v *VoiceStateProvider) MissingTextPermissions(
	_, channelID snowflake.ID,
) ([]string, error) {
	perms, err := v.session.State.UserChannelPermissions(
		v.session.State.User.ID,
		channelID.String(),
	)
	if err != nil {
		return nil, err
	}

	var missing []string
	if perms&discordgo.PermissionViewChannel == 0 {
		missing = append(missing, "View Channel")
	}
	if perms&discordgo.PermissionSendMessages == 0 {
		missing = append(missing, "Send Messages")
	}
	return missing, nil
}

// ChannelHasRoom reports whether the voice channel has a free slot. Channels
// without a user limit always have room.
func (v *VoiceStateProvider) ChannelHasRoom(guildID, channelID snowflake.ID) (bool, error) {
	channel, err := v.session.State.Channel(channelID.String())
	if err != nil {
		return false, err
	}
	if channel.UserLimit == 0 {
		return true, nil
	}

	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return false, err
	}

	occupants := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID.String() {
			occupants++
		}
	}
	return occupants < channel.UserLimit, nil
}

// CanMoveMembers reports whether the bot may bypass the capacity check.
// This is a guild-level capability, computed from the bot's roles.
func (v *VoiceStateProvider) CanMoveMembers(guildID snowflake.ID) bool {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return false
	}
	member, err := v.session.State.Member(guildID.String(), v.session.State.User.ID)
	if err != nil {
		return false
	}

	var perms int64
	for _, role := range guild.Roles {
		if role.ID == guild.ID { // @everyone
			perms |= role.Permissions
		}
		for _, memberRole := range member.Roles {
			if role.ID == memberRole {
				perms |= role.Permissions
			}
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&discordgo.PermissionVoiceMoveMembers != 0
}

func (v *VoiceStateProvider) botID() snowflake.ID {
	id, err := snowflake.Parse(v.session.State.User.ID)
	if err != nil {
		return 0
	}
	return id
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
