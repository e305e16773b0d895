package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/bot"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/usecases"
	mpdomain "github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
	"github.com/pyrumble/RumbleBot/internal/modules/playlist/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorInfo    = 0x3498DB
)

// CommandHandlers dispatches the playlist command group.
type CommandHandlers struct {
	store    domain.Store
	playback *usecases.PlaybackService
	resolver *usecases.ResolverService
	node     ports.AudioNode
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	store domain.Store,
	playback *usecases.PlaybackService,
	resolver *usecases.ResolverService,
	node ports.AudioNode,
) *CommandHandlers {
	return &CommandHandlers{
		store:    store,
		playback: playback,
		resolver: resolver,
		node:     node,
	}
}

// HandlePlaylist routes the /playlist subcommands.
func (h *CommandHandlers) HandlePlaylist(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid interaction")
	}

	sub := options[0]
	switch sub.Name {
	case "create":
		return h.handleCreate(i, sub, r)
	case "add-track":
		return h.handleAddTrack(i, sub, r)
	case "ls":
		return h.handleList(i, r)
	case "play":
		return h.handlePlay(i, sub, r)
	case "manage":
		return h.handleManage(i, sub, r)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *CommandHandlers) handleCreate(
	i *discordgo.InteractionCreate,
	sub *discordgo.ApplicationCommandInteractionDataOption,
	r bot.Responder,
) error {
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	var name, description string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "name":
			name = opt.StringValue()
		case "description":
			description = opt.StringValue()
		}
	}

	id, err := h.store.CreatePlaylist(context.Background(), int64(userID), name, description)
	if err != nil {
		return respondStoreError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf(
		"Playlist created: **%s**\n- Playlist ID: `%d`\n- Use `/playlist ls` to view your playlists.",
		name, id,
	))
}

func (h *CommandHandlers) handleAddTrack(
	i *discordgo.InteractionCreate,
	sub *discordgo.ApplicationCommandInteractionDataOption,
	r bot.Responder,
) error {
	ctx := context.Background()

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	var (
		playlistID int64
		query      string
		catalogTag string
		searchType string
	)
	for _, opt := range sub.Options {
		switch opt.Name {
		case "id":
			playlistID = opt.IntValue()
		case "query":
			query = opt.StringValue()
		case "catalog":
			catalogTag = opt.StringValue()
		case "type":
			searchType = opt.StringValue()
		}
	}

	resolved, err := h.resolver.Resolve(ctx, usecases.ResolveInput{
		Query:      query,
		CatalogTag: catalogTag,
		SearchType: mpdomain.ParseSearchType(searchType),
	})
	if err != nil {
		return respondError(r, err.Error())
	}

	if resolved.IsCollection {
		encoded := make([]string, len(resolved.Collection))
		for idx, track := range resolved.Collection {
			encoded[idx] = track.Encoded
		}
		if err := h.store.AppendTracks(ctx, playlistID, int64(userID), encoded); err != nil {
			return respondStoreError(r, err)
		}
		return respondSuccess(r, fmt.Sprintf(
			"Added **%s** to the playlist - `%d` tracks!",
			resolved.CollectionName, len(encoded),
		))
	}

	track := resolved.Track
	if err := h.store.AppendTrack(ctx, playlistID, int64(userID), track.Encoded); err != nil {
		return respondStoreError(r, err)
	}
	return respondSuccess(r, fmt.Sprintf(
		"Added **%s - %s** to the playlist!",
		track.Artist, track.Title,
	))
}

func (h *CommandHandlers) handleList(
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	playlists, err := h.store.ListPlaylists(context.Background(), int64(userID))
	if err != nil {
		return respondStoreError(r, err)
	}
	if len(playlists) == 0 {
		return respondSuccess(r, "You don't have any playlist!")
	}

	var sb strings.Builder
	sb.WriteString("|Title| |ID| |Description|\n")
	for _, p := range playlists {
		fmt.Fprintf(&sb, "- **%s** `%d` '%s'\n", p.Name, p.ID, p.Description)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       fmt.Sprintf("%s's playlists", i.Member.User.Username),
					Description: sb.String(),
					Color:       colorInfo,
				},
			},
		},
	})
}

func (h *CommandHandlers) handlePlay(
	i *discordgo.InteractionCreate,
	sub *discordgo.ApplicationCommandInteractionDataOption,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	var playlistID int64
	for _, opt := range sub.Options {
		if opt.Name == "id" {
			playlistID = opt.IntValue()
		}
	}

	playlist, err := h.store.GetPlaylist(ctx, playlistID, 0)
	if err != nil {
		return respondStoreError(r, err)
	}

	stored, err := h.store.ListTracks(ctx, playlistID)
	if err != nil {
		return respondStoreError(r, err)
	}
	if len(stored) == 0 {
		return respondError(r, fmt.Sprintf("The playlist with ID `%d` doesn't have any songs.", playlistID))
	}

	if _, err := h.playback.Attach(ctx, usecases.AttachInput{
		GuildID:       guildID,
		UserID:        userID,
		TextChannelID: channelID,
	}); err != nil {
		return respondError(r, err.Error())
	}

	encoded := make([]string, len(stored))
	for idx, t := range stored {
		encoded[idx] = t.Encoded
	}
	tracks, err := h.node.Decode(ctx, encoded)
	if err != nil {
		return respondError(r, "Backend error while decoding the playlist.")
	}

	// Each track carries its own provenance, so extras are attached here
	// rather than through the playback service's shared map.
	for idx, track := range tracks {
		if err := track.AttachExtras(map[string]any{
			mpdomain.ExtraRequesterID:     userID,
			mpdomain.ExtraPlaylistID:      playlist.ID,
			mpdomain.ExtraPlaylistOwnerID: playlist.OwnerID,
			mpdomain.ExtraPlaylistTrackID: stored[idx].ID,
		}); err != nil {
			return respondError(r, err.Error())
		}
	}

	if _, err := h.playback.Play(ctx, usecases.PlayInput{
		GuildID: guildID,
		UserID:  userID,
		Tracks:  tracks,
	}); err != nil {
		return respondError(r, err.Error())
	}

	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf(
			"Added custom playlist: **%s** - `%d` tracks.",
			playlist.Name, len(tracks),
		),
		Color: colorSuccess,
	}
	if playlist.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: playlist.ThumbnailURL}
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func (h *CommandHandlers) handleManage(
	i *discordgo.InteractionCreate,
	sub *discordgo.ApplicationCommandInteractionDataOption,
	r bot.Responder,
) error {
	ctx := context.Background()

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	var (
		playlistID int64
		action     = "show"
		fields     domain.EditFields
	)
	for _, opt := range sub.Options {
		switch opt.Name {
		case "id":
			playlistID = opt.IntValue()
		case "action":
			action = opt.StringValue()
		case "name":
			v := opt.StringValue()
			fields.Name = &v
		case "description":
			v := opt.StringValue()
			fields.Description = &v
		case "thumbnail":
			v := opt.StringValue()
			fields.ThumbnailURL = &v
		}
	}

	switch action {
	case "show":
		return h.showPlaylist(ctx, playlistID, int64(userID), r)

	case "edit":
		if _, err := h.store.GetPlaylist(ctx, playlistID, int64(userID)); err != nil {
			return respondStoreError(r, err)
		}
		edited, err := h.store.EditPlaylist(ctx, playlistID, fields)
		if err != nil {
			return respondStoreError(r, err)
		}
		if len(edited) == 0 {
			return respondSuccess(r, "Nothing to change.")
		}
		return respondSuccess(r, fmt.Sprintf("Updated: `%s`.", strings.Join(edited, "`, `")))

	case "clear":
		if err := h.store.ClearTracks(ctx, playlistID, int64(userID)); err != nil {
			return respondStoreError(r, err)
		}
		return respondSuccess(r, "All tracks removed from the playlist.")

	case "delete":
		if err := h.store.DeletePlaylist(ctx, playlistID, int64(userID)); err != nil {
			return respondStoreError(r, err)
		}
		return respondSuccess(r, "Playlist deleted.")

	default:
		return respondError(r, "Unknown action")
	}
}

func (h *CommandHandlers) showPlaylist(
	ctx context.Context,
	playlistID, userID int64,
	r bot.Responder,
) error {
	playlist, err := h.store.GetPlaylist(ctx, playlistID, userID)
	if err != nil {
		return respondStoreError(r, err)
	}
	tracks, err := h.store.ListTracks(ctx, playlistID)
	if err != nil {
		return respondStoreError(r, err)
	}

	description := "None"
	if playlist.Description != "" {
		description = fmt.Sprintf("`%s`", playlist.Description)
	}
	embed := &discordgo.MessageEmbed{
		Title: playlist.Name,
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Description", Value: description},
			{Name: "Tracks", Value: fmt.Sprintf("`%d` tracks", len(tracks))},
		},
	}
	if playlist.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: playlist.ThumbnailURL}
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// respondStoreError maps store errors to user-facing messages without
// leaking whether a foreign playlist exists.
func respondStoreError(r bot.Responder, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return respondError(r, "Playlist not found.")
	case errors.Is(err, domain.ErrForbidden):
		return respondError(r, "This playlist does not belong to you.")
	default:
		return respondError(r, "Unexpected backend error.")
	}
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
