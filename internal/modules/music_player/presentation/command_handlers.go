package presentation

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/bot"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/usecases"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	playback *usecases.PlaybackService
	resolver *usecases.ResolverService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	playback *usecases.PlaybackService,
	resolver *usecases.ResolverService,
) *CommandHandlers {
	return &CommandHandlers{
		playback: playback,
		resolver: resolver,
	}
}

// interactionIDs extracts the guild, user, and channel IDs from an interaction.
func interactionIDs(i *discordgo.InteractionCreate) (guildID, userID, channelID snowflake.ID, err error) {
	guildID, err = snowflake.Parse(i.GuildID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid guild ID: %w", err)
	}
	userID, err = snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid user ID: %w", err)
	}
	channelID, err = snowflake.Parse(i.ChannelID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid channel ID: %w", err)
	}
	return guildID, userID, channelID, nil
}

// boundGuild verifies the interaction against the guild session's bindings
// and returns the guild ID. Session-scoped commands call it before touching
// the playback service; the play commands go through Attach instead.
func (h *CommandHandlers) boundGuild(i *discordgo.InteractionCreate) (snowflake.ID, error) {
	guildID, userID, channelID, err := interactionIDs(i)
	if err != nil {
		return 0, err
	}
	if _, err := h.playback.Bind(guildID, userID, channelID); err != nil {
		return 0, err
	}
	return guildID, nil
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, userID, channelID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	var query, catalogTag, searchTypeRaw string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "query":
			query = opt.StringValue()
		case "catalog":
			catalogTag = opt.StringValue()
		case "type":
			searchTypeRaw = opt.StringValue()
		}
	}

	if _, err := h.playback.Attach(ctx, usecases.AttachInput{
		GuildID:       guildID,
		UserID:        userID,
		TextChannelID: channelID,
	}); err != nil {
		return respondError(r, err.Error())
	}

	resolved, err := h.resolver.Resolve(ctx, usecases.ResolveInput{
		Query:      query,
		CatalogTag: catalogTag,
		SearchType: domain.ParseSearchType(searchTypeRaw),
	})
	if err != nil {
		return respondError(r, err.Error())
	}

	tracks := resolved.Collection
	if !resolved.IsCollection {
		tracks = []*domain.Track{resolved.Track}
	}

	output, err := h.playback.Play(ctx, usecases.PlayInput{
		GuildID: guildID,
		UserID:  userID,
		Tracks:  tracks,
	})
	if err != nil {
		return respondError(r, err.Error())
	}

	var description string
	switch {
	case resolved.IsCollection:
		description = fmt.Sprintf(
			"Added **%d tracks** from **%s** to the queue.",
			output.Enqueued,
			resolved.CollectionName,
		)
	case resolved.Track.URI != "":
		description = fmt.Sprintf("Added [%s](%s) to the queue.", resolved.Track.Title, resolved.Track.URI)
	default:
		description = fmt.Sprintf("Added **%s** to the queue.", resolved.Track.Title)
	}

	return respondSuccess(r, description)
}

// HandlePlayFile handles the /playfile command.
func (h *CommandHandlers) HandlePlayFile(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, userID, channelID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	data := i.ApplicationCommandData()
	var attachment *discordgo.MessageAttachment
	for _, opt := range data.Options {
		if opt.Name == "file" {
			if id, ok := opt.Value.(string); ok {
				attachment = data.Resolved.Attachments[id]
			}
		}
	}
	if attachment == nil {
		return respondError(r, "No file attached")
	}
	if !strings.HasPrefix(attachment.ContentType, "audio/") &&
		!strings.HasPrefix(attachment.ContentType, "video/") {
		return respondError(r, "The attached file is not an audio file")
	}

	if _, err := h.playback.Attach(ctx, usecases.AttachInput{
		GuildID:       guildID,
		UserID:        userID,
		TextChannelID: channelID,
	}); err != nil {
		return respondError(r, err.Error())
	}

	resolved, err := h.resolver.Resolve(ctx, usecases.ResolveInput{
		Query:      attachment.URL,
		SearchType: domain.SearchTypeTrack,
	})
	if err != nil {
		return respondError(r, err.Error())
	}

	if _, err := h.playback.Play(ctx, usecases.PlayInput{
		GuildID: guildID,
		UserID:  userID,
		Tracks:  []*domain.Track{resolved.Track},
	}); err != nil {
		return respondError(r, err.Error())
	}

	return respondSuccess(r, fmt.Sprintf("Added **%s** to the queue.", attachment.Filename))
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	output, err := h.playback.NowPlaying(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}

	status := "Now Playing"
	if output.Paused {
		status = "Paused"
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: status},
		Title:  output.Track.Title,
		URL:    output.Track.URI,
		Color:  colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: output.Track.Artist, Inline: true},
			{Name: "Duration", Value: output.Track.FormattedDuration(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Queue: %d | Loop: %s", output.QueueLen, output.Mode),
		},
	}
	if output.Track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: output.Track.ArtworkURL}
	}
	if requester := output.Track.RequesterID(); requester != 0 {
		embed.Description = fmt.Sprintf("Requested by <@%d>", requester)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// queuePageSize is the number of tracks shown by /queue.
const queuePageSize = 10

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	tracks, err := h.playback.QueueTracks(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}
	if len(tracks) == 0 {
		return respondSuccess(r, "The queue is empty.")
	}

	var sb strings.Builder
	shown := tracks
	if len(shown) > queuePageSize {
		shown = shown[:queuePageSize]
	}
	for idx, track := range shown {
		fmt.Fprintf(&sb, "%d. **%s** - %s (%s)\n",
			idx+1, track.Title, track.Artist, track.FormattedDuration())
	}
	if rest := len(tracks) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "...and %d more.\n", rest)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       fmt.Sprintf("Queue (%d tracks)", len(tracks)),
					Description: sb.String(),
					Color:       colorSuccess,
				},
			},
		},
	})
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	next, err := h.playback.Skip(ctx, guildID)
	if err != nil {
		return respondError(r, err.Error())
	}
	if next == nil {
		return respondSuccess(r, "Skipped. The queue is empty.")
	}
	return respondSuccess(r, fmt.Sprintf("Skipped. Now playing **%s**.", next.Title))
}

// HandlePrevious handles the /previous command.
func (h *CommandHandlers) HandlePrevious(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	track, err := h.playback.Previous(ctx, guildID)
	if err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Playing **%s** from history.", track.Title))
}

// HandleReplay handles the /replay command.
func (h *CommandHandlers) HandleReplay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	track, err := h.playback.Replay(ctx, guildID)
	if err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Replaying **%s**.", track.Title))
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	mode, err := h.playback.CycleLoopMode(guildID)
	if err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, fmt.Sprintf("Loop mode is now **%s**.", mode))
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	if err := h.playback.Pause(ctx, guildID); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Paused.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	if err := h.playback.Resume(ctx, guildID); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Resumed.")
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := h.boundGuild(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	if err := h.playback.Stop(ctx, usecases.StopInput{
		GuildID:     guildID,
		ClearQueues: true,
		Disconnect:  true,
	}); err != nil {
		return respondError(r, err.Error())
	}
	return respondSuccess(r, "Stopped and disconnected.")
}

// HandleStats handles the /stats command.
func (h *CommandHandlers) HandleStats(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	embed := &discordgo.MessageEmbed{
		Title: "Stats",
		Color: colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Players", Value: fmt.Sprintf("There's %d players.", h.playback.ActiveSessions())},
			{Name: "Guilds", Value: fmt.Sprintf("%d discord guilds!", len(s.State.Guilds))},
			{Name: "Ping", Value: fmt.Sprintf("%dms", s.HeartbeatLatency().Milliseconds())},
		},
	}
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}
