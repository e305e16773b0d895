package storage

import (
	"context"
	"sync"

	"github.com/pyrumble/RumbleBot/internal/modules/playlist/domain"
)

// MemoryStore is an in-memory implementation of the playlist store, used in
// tests and when no persistence backend is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	playlists   map[int64]*domain.Playlist
	tracks      map[int64][]*domain.PlaylistTrack
	nextID      int64
	nextTrackID int64
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		playlists:   make(map[int64]*domain.Playlist),
		tracks:      make(map[int64][]*domain.PlaylistTrack),
		nextID:      1,
		nextTrackID: 1,
	}
}

// CreatePlaylist creates a playlist and returns its ID.
func (s *MemoryStore) CreatePlaylist(
	_ context.Context,
	ownerID int64,
	name, description string,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.playlists[id] = &domain.Playlist{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}
	return id, nil
}

// GetPlaylist returns the playlist, optionally scoped to an owner.
func (s *MemoryStore) GetPlaylist(
	_ context.Context,
	playlistID, ownerID int64,
) (*domain.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[playlistID]
	if !ok || (ownerID != 0 && p.OwnerID != ownerID) {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

// ListPlaylists returns all playlists owned by the user.
func (s *MemoryStore) ListPlaylists(
	_ context.Context,
	ownerID int64,
) ([]*domain.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Playlist
	for id := int64(1); id < s.nextID; id++ {
		if p, ok := s.playlists[id]; ok && p.OwnerID == ownerID {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ListTracks returns the playlist's tracks in insertion order.
func (s *MemoryStore) ListTracks(
	_ context.Context,
	playlistID int64,
) ([]*domain.PlaylistTrack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracks := s.tracks[playlistID]
	result := make([]*domain.PlaylistTrack, len(tracks))
	for i, t := range tracks {
		copied := *t
		result[i] = &copied
	}
	return result, nil
}

func (s *MemoryStore) checkOwnershipLocked(playlistID, ownerID int64) error {
	p, ok := s.playlists[playlistID]
	if !ok || p.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

// AppendTrack appends one encoded payload.
func (s *MemoryStore) AppendTrack(
	ctx context.Context,
	playlistID, ownerID int64,
	encoded string,
) error {
	return s.AppendTracks(ctx, playlistID, ownerID, []string{encoded})
}

// AppendTracks appends a batch atomically.
func (s *MemoryStore) AppendTracks(
	_ context.Context,
	playlistID, ownerID int64,
	encoded []string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwnershipLocked(playlistID, ownerID); err != nil {
		return err
	}

	for _, payload := range encoded {
		s.tracks[playlistID] = append(s.tracks[playlistID], &domain.PlaylistTrack{
			ID:         s.nextTrackID,
			PlaylistID: playlistID,
			OwnerID:    ownerID,
			Encoded:    payload,
		})
		s.nextTrackID++
	}
	return nil
}

// EditPlaylist applies the non-nil fields and returns the names of the fields
// actually changed.
func (s *MemoryStore) EditPlaylist(
	_ context.Context,
	playlistID int64,
	fields domain.EditFields,
) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlistID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Description != nil {
		p.Description = *fields.Description
	}
	if fields.ThumbnailURL != nil {
		p.ThumbnailURL = *fields.ThumbnailURL
	}

	changed := fields.Changed()
	if changed == nil {
		changed = []string{}
	}
	return changed, nil
}

// ClearTracks removes all tracks from the playlist.
func (s *MemoryStore) ClearTracks(_ context.Context, playlistID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwnershipLocked(playlistID, ownerID); err != nil {
		return err
	}
	delete(s.tracks, playlistID)
	return nil
}

// DeletePlaylist removes the playlist and its tracks.
func (s *MemoryStore) DeletePlaylist(_ context.Context, playlistID, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlistID]
	if !ok || p.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.playlists, playlistID)
	delete(s.tracks, playlistID)
	return nil
}

// DeleteTrack removes a single track from the playlist by track ID.
func (s *MemoryStore) DeleteTrack(_ context.Context, playlistID, ownerID, trackID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := s.tracks[playlistID]
	for i, t := range tracks {
		if t.ID == trackID && t.OwnerID == ownerID {
			s.tracks[playlistID] = append(tracks[:i], tracks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Ensure MemoryStore implements domain.Store.
var _ domain.Store = (*MemoryStore)(nil)
