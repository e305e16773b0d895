package usecases

import (
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// Domain errors for the music player module.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrNoCurrentTrack is returned when replay is requested with nothing loaded.
	ErrNoCurrentTrack = errors.New("no track to replay")

	// ErrEmptyHistory is returned when skip-previous finds an empty backpack.
	ErrEmptyHistory = errors.New("no previously played tracks")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrUnsupportedLink is returned for links from a disallowed platform.
	ErrUnsupportedLink = errors.New("links from this platform are not supported")

	// ErrChannelFull is returned when the target voice channel has no free slot.
	ErrChannelFull = errors.New("the voice channel is full")

	// ErrQueueEmpty is returned when the queue is empty.
	ErrQueueEmpty = errors.New("the queue is empty")
)

// WrongChannelError is returned when a command arrives from a text channel
// other than the one the session was bound to at join time.
type WrongChannelError struct {
	BoundChannelID snowflake.ID
}

func (e *WrongChannelError) Error() string {
	return fmt.Sprintf("commands for this session must be issued in <#%d>", e.BoundChannelID)
}

// NotInChannelError is returned when the user is not in the bot's voice channel.
type NotInChannelError struct {
	VoiceChannelID snowflake.ID
}

func (e *NotInChannelError) Error() string {
	return fmt.Sprintf("you must be in <#%d> to control playback", e.VoiceChannelID)
}

// MissingPermissionsError is returned when the bot lacks capabilities in the
// target channel. Permissions holds the human-readable capability names.
type MissingPermissionsError struct {
	Permissions []string
}

func (e *MissingPermissionsError) Error() string {
	return "missing permissions: " + strings.Join(e.Permissions, ", ")
}
