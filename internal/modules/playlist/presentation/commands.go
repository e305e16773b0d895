package presentation

import "github.com/bwmarrin/discordgo"

func catalogChoices() []*discordgo.ApplicationCommandOptionChoice {
	return []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Spotify", Value: "spotify"},
		{Name: "Deezer", Value: "deezer"},
		{Name: "Apple Music", Value: "applemusic"},
		{Name: "SoundCloud", Value: "soundcloud"},
	}
}

// Commands returns the playlist command group.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "playlist",
			Description: "Manage and play your saved playlists",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Playlist name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "description",
							Description: "Playlist description",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add-track",
					Description: "Add a track, album, playlist, or artist to a playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "Playlist ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "Track title or link",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "What to search for (ignored if query is a link)",
							Required:    false,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Track", Value: "track"},
								{Name: "Album", Value: "album"},
								{Name: "Playlist", Value: "playlist"},
								{Name: "Artist", Value: "artist"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "catalog",
							Description: "Music catalog to search (ignored if query is a link)",
							Required:    false,
							Choices:     catalogChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "ls",
					Description: "Show your playlists",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "play",
					Description: "Play a saved playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "Playlist ID",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "manage",
					Description: "Edit, clear, or delete a playlist",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "Playlist ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "action",
							Description: "What to do (defaults to showing the playlist)",
							Required:    false,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Show", Value: "show"},
								{Name: "Edit", Value: "edit"},
								{Name: "Clear tracks", Value: "clear"},
								{Name: "Delete", Value: "delete"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "New name (edit action)",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "description",
							Description: "New description (edit action)",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "thumbnail",
							Description: "New thumbnail URL (edit action)",
							Required:    false,
						},
					},
				},
			},
		},
	}
}
