package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended, as reported by the audio node.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to completion.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "loadFailed"
	// TrackEndStopped means playback was stopped explicitly.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was pre-empted by another play command.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the node cleaned the player up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// EntersBackpack reports whether a track that ended for this reason belongs
// in the play history. A replaced track was pre-empted, not completed.
func (r TrackEndReason) EntersBackpack() bool {
	return r != TrackEndReplaced
}

// ShouldAdvanceQueue reports whether the session should start the next queued
// track. Explicit stops and replacements drive their own follow-up.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackStartedEvent is emitted when the audio node begins playing a track.
type TrackStartedEvent struct {
	GuildID snowflake.ID
	Track   *Track
}

// TrackEndedEvent is emitted when the audio node finishes, fails, or drops a
// track.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Track   *Track
	Reason  TrackEndReason
}

// TrackExceptionEvent is emitted when the audio node hits an error mid-play.
type TrackExceptionEvent struct {
	GuildID snowflake.ID
	Title   string
	Message string
}

// PlayerInactiveEvent is emitted when a session has been idle past the
// inactivity timeout.
type PlayerInactiveEvent struct {
	GuildID snowflake.ID
}
