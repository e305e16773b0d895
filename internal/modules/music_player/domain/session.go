package domain

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Session is the live playback controller bound to one voice channel. It owns
// the queue and backpack for that channel and is addressed through the
// SessionRegistry by guild ID.
//
// Sessions provide no internal synchronization beyond the embedded mutex:
// callers must hold the lock across any sequence of queue/backpack mutation
// and audio-node command issuance so commands for one session are serialized.
type Session struct {
	sync.Mutex

	guildID        snowflake.ID
	voiceChannelID snowflake.ID
	textChannelID  snowflake.ID // channel that issued the join; control messages route here

	panelMessageID *snowflake.ID // control-panel message, if one was posted

	current  *Track
	paused   bool
	autoplay bool

	Queue    Queue
	Backpack Backpack
}

// NewSession creates a Session bound to the given guild, voice channel, and
// the text channel that issued the join command. Queue mode starts normal and
// autoplay off.
func NewSession(guildID, voiceChannelID, textChannelID snowflake.ID) *Session {
	return &Session{
		guildID:        guildID,
		voiceChannelID: voiceChannelID,
		textChannelID:  textChannelID,
		Queue:          NewQueue(),
		Backpack:       NewBackpack(),
	}
}

// GuildID returns the guild this session belongs to. Immutable after creation.
func (s *Session) GuildID() snowflake.ID {
	return s.guildID
}

// VoiceChannelID returns the bound voice channel.
func (s *Session) VoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// TextChannelID returns the text channel commands were bound to at join time.
func (s *Session) TextChannelID() snowflake.ID {
	return s.textChannelID
}

// Current returns the currently playing track, or nil.
func (s *Session) Current() *Track {
	return s.current
}

// SetCurrent records the currently playing track (nil when playback stops).
func (s *Session) SetCurrent(track *Track) {
	s.current = track
}

// IsPlaying returns true if a track is currently loaded on the audio node.
func (s *Session) IsPlaying() bool {
	return s.current != nil
}

// IsPaused returns true if playback is paused.
func (s *Session) IsPaused() bool {
	return s.paused
}

// SetPaused records the paused flag.
func (s *Session) SetPaused(paused bool) {
	s.paused = paused
}

// Autoplay returns whether node-assisted related-track suggestion is enabled.
func (s *Session) Autoplay() bool {
	return s.autoplay
}

// SetAutoplay toggles node-assisted related-track suggestion.
func (s *Session) SetAutoplay(enabled bool) {
	s.autoplay = enabled
}

// PanelMessageID returns the control-panel message reference, or nil.
func (s *Session) PanelMessageID() *snowflake.ID {
	return s.panelMessageID
}

// SetPanelMessageID stores the control-panel message reference.
func (s *Session) SetPanelMessageID(messageID snowflake.ID) {
	s.panelMessageID = &messageID
}

// SessionRegistry maps guild IDs to their playback sessions. It replaces
// ambient per-channel global state: command handlers receive the registry and
// look sessions up explicitly.
type SessionRegistry interface {
	// Get returns the Session for the given guild, or nil if none exists.
	Get(guildID snowflake.ID) *Session

	// Save stores the Session.
	Save(session *Session)

	// Delete removes the Session for the given guild.
	Delete(guildID snowflake.ID)

	// Count returns the number of live sessions.
	Count() int
}
