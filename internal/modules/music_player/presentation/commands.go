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

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play a track, album, playlist, or artist from URL or search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "URL or search term",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "What to search for (defaults to track)",
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
					Description: "Music catalog to search (defaults to Spotify)",
					Required:    false,
					Choices:     catalogChoices(),
				},
			},
		},
		{
			Name:        "playfile",
			Description: "Play an attached audio file",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "file",
					Description: "Audio file to play",
					Required:    true,
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the currently playing track",
		},
		{
			Name:        "queue",
			Description: "Show the current queue",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
		},
		{
			Name:        "previous",
			Description: "Play the previously played track",
		},
		{
			Name:        "replay",
			Description: "Restart the current track from the beginning",
		},
		{
			Name:        "loop",
			Description: "Cycle the loop mode (normal, track, queue)",
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "stop",
			Description: "Stop playback, clear the queue, and disconnect",
		},
		{
			Name:        "stats",
			Description: "Show bot statistics",
		},
	}
}
