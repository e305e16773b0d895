package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorPlaying = 0x2ECC71
	colorIdle    = 0x95A5A6
)

// Notifier sends control messages and maintains the playback panel message.
type Notifier struct {
	session  *discordgo.Session
	registry domain.SessionRegistry
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session, registry domain.SessionRegistry) *Notifier {
	return &Notifier{
		session:  session,
		registry: registry,
	}
}

// Send posts a plain control message and returns its message ID.
func (n *Notifier) Send(channelID snowflake.ID, message string) (snowflake.ID, error) {
	sent, err := n.session.ChannelMessageSend(channelID.String(), message)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return snowflake.Parse(sent.ID)
}

// RefreshPanel redraws the guild session's control-panel message.
func (n *Notifier) RefreshPanel(guildID, messageID snowflake.ID) error {
	session := n.registry.Get(guildID)
	if session == nil {
		return nil
	}

	session.Lock()
	embed := buildPanelEmbed(session)
	channelID := session.TextChannelID()
	session.Unlock()

	_, err := n.session.ChannelMessageEditEmbed(channelID.String(), messageID.String(), embed)
	if err != nil {
		return fmt.Errorf("failed to edit panel message: %w", err)
	}
	return nil
}

// buildPanelEmbed renders the playback panel. The caller must hold the
// session lock.
func buildPanelEmbed(session *domain.Session) *discordgo.MessageEmbed {
	current := session.Current()
	if current == nil {
		return &discordgo.MessageEmbed{
			Title:       "Nothing playing",
			Description: "The queue is empty.",
			Color:       colorIdle,
		}
	}

	status := "Playing"
	if session.IsPaused() {
		status = "Paused"
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: status,
		},
		Title: current.Title,
		URL:   current.URI,
		Color: colorPlaying,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artist",
				Value:  current.Artist,
				Inline: true,
			},
			{
				Name:   "Duration",
				Value:  current.FormattedDuration(),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Queue: %d | Loop: %s",
				session.Queue.Len(),
				session.Queue.Mode(),
			),
		},
	}

	if current.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: current.ArtworkURL}
	}
	if requester := current.RequesterID(); requester != 0 {
		embed.Description = fmt.Sprintf("Requested by <@%d>", requester)
	}

	return embed
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)
