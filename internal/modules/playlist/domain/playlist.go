package domain

import (
	"context"
	"errors"
)

// Store errors.
var (
	// ErrNotFound is returned when a playlist does not exist. Mutating paths
	// also return it for ownership misses so a non-owner cannot distinguish
	// "doesn't exist" from "exists but not yours".
	ErrNotFound = errors.New("playlist not found")

	// ErrForbidden is returned when a mutation is attempted by a non-owner.
	ErrForbidden = errors.New("playlist does not belong to this user")
)

// Playlist is a user-owned named collection of encoded track payloads.
type Playlist struct {
	ID           int64
	OwnerID      int64
	Name         string
	Description  string
	ThumbnailURL string
}

// PlaylistTrack is one stored track of a playlist. Encoded holds the audio
// node's opaque payload; it is never inspected, only round-tripped.
type PlaylistTrack struct {
	ID         int64
	PlaylistID int64
	OwnerID    int64
	Encoded    string
}

// EditFields carries the optional fields of an edit request. A nil field is
// left untouched; only non-nil fields are applied.
type EditFields struct {
	Name         *string
	Description  *string
	ThumbnailURL *string
}

// Changed returns the names of the fields an edit would apply.
func (f EditFields) Changed() []string {
	var changed []string
	if f.Name != nil {
		changed = append(changed, "name")
	}
	if f.Description != nil {
		changed = append(changed, "description")
	}
	if f.ThumbnailURL != nil {
		changed = append(changed, "thumbnail_url")
	}
	return changed
}

// Store persists playlists and their tracks. Every mutating operation other
// than EditPlaylist is ownership-scoped: the row must match both playlist ID
// and owner ID or the operation fails.
type Store interface {
	// CreatePlaylist creates a playlist and returns its ID.
	CreatePlaylist(ctx context.Context, ownerID int64, name, description string) (int64, error)

	// GetPlaylist returns the playlist. With ownerID != 0 the lookup is also
	// scoped to ownership.
	GetPlaylist(ctx context.Context, playlistID, ownerID int64) (*Playlist, error)

	// ListPlaylists returns all playlists owned by the user.
	ListPlaylists(ctx context.Context, ownerID int64) ([]*Playlist, error)

	// ListTracks returns the playlist's tracks in insertion order.
	ListTracks(ctx context.Context, playlistID int64) ([]*PlaylistTrack, error)

	// AppendTrack appends one encoded payload. Returns ErrForbidden unless
	// ownerID matches the playlist's owner.
	AppendTrack(ctx context.Context, playlistID, ownerID int64, encoded string) error

	// AppendTracks appends a batch atomically: a failure mid-batch must not
	// leave a partial application.
	AppendTracks(ctx context.Context, playlistID, ownerID int64, encoded []string) error

	// EditPlaylist applies the non-nil fields and returns the names of the
	// fields actually changed. An edit with no effective fields returns an
	// empty set.
	EditPlaylist(ctx context.Context, playlistID int64, fields EditFields) ([]string, error)

	// ClearTracks removes all tracks from the playlist.
	ClearTracks(ctx context.Context, playlistID, ownerID int64) error

	// DeletePlaylist removes the playlist and cascades track deletion.
	// Returns ErrNotFound for a non-owner.
	DeletePlaylist(ctx context.Context, playlistID, ownerID int64) error

	// DeleteTrack removes a single track from the playlist by track ID.
	DeleteTrack(ctx context.Context, playlistID, ownerID, trackID int64) error
}
