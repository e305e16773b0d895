package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress   string        `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword  string        `env:"LAVALINK_PASSWORD,notEmpty"`
	InactivityTimeout time.Duration `env:"PLAYER_INACTIVITY_TIMEOUT" envDefault:"5m"`
}
