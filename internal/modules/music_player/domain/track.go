package domain

import (
	"errors"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackID is a unique identifier for a track, as reported by the audio node.
type TrackID string

// Extras keys. The extras map is attached by whichever component enqueues the
// track; playlist provenance keys are only present for playlist-originated tracks.
const (
	ExtraRequesterID     = "requester_id"
	ExtraPlaylistID      = "playlist_id"
	ExtraPlaylistOwnerID = "owner_id"
	ExtraPlaylistTrackID = "playlist_track_id"
)

// ErrExtrasAttached is returned when extras are attached to a track twice.
var ErrExtrasAttached = errors.New("track extras already attached")

// Track represents a playable audio track resolved through the audio node.
// All descriptor fields are immutable once resolved; only the extras map may
// be set afterwards, exactly once.
type Track struct {
	ID         TrackID
	Encoded    string // opaque payload the audio node can re-decode
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string // e.g. "spotify", "deezer", "soundcloud"
	IsStream   bool

	extras map[string]any
}

// AttachExtras stores the open metadata map on the track. It may be called
// exactly once per track; further calls return ErrExtrasAttached.
func (t *Track) AttachExtras(extras map[string]any) error {
	if t.extras != nil {
		return ErrExtrasAttached
	}
	t.extras = extras
	return nil
}

// Extra returns the extras value for the given key, or nil if absent.
func (t *Track) Extra(key string) any {
	if t.extras == nil {
		return nil
	}
	return t.extras[key]
}

// RequesterID returns the user who enqueued the track, or 0 if no extras
// were attached.
func (t *Track) RequesterID() snowflake.ID {
	if id, ok := t.Extra(ExtraRequesterID).(snowflake.ID); ok {
		return id
	}
	return 0
}

// PlaylistID returns the originating playlist ID for playlist-sourced tracks,
// or 0 for ad-hoc tracks.
func (t *Track) PlaylistID() int64 {
	if id, ok := t.Extra(ExtraPlaylistID).(int64); ok {
		return id
	}
	return 0
}

// IsValid returns true if the track carries the minimum fields required to
// hand it to the audio node.
func (t *Track) IsValid() bool {
	return t.Encoded != "" && t.Title != ""
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss.
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
