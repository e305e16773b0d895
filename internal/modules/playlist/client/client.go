package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pyrumble/RumbleBot/internal/modules/playlist/api"
	"github.com/pyrumble/RumbleBot/internal/modules/playlist/domain"
)

// Client is the bot-side client for the playlist HTTP surface. It presents
// the same contract as domain.Store, translating HTTP faults back into the
// store's sentinel errors.
type Client struct {
	baseURL   string
	masterKey string
	http      *http.Client
}

// New creates a new Client.
func New(baseURL, masterKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		masterKey: masterKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body any,
	out any,
) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		req.Header.Set(api.MasterKeyHeader, c.masterKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("playlist request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusForbidden:
		return domain.ErrForbidden
	default:
		return fmt.Errorf("playlist service returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CreatePlaylist creates a playlist and returns its ID.
func (c *Client) CreatePlaylist(
	ctx context.Context,
	ownerID int64,
	name, description string,
) (int64, error) {
	var out struct {
		PlID int64 `json:"pl_id"`
	}
	err := c.do(ctx, http.MethodPost, "/playlist/", map[string]any{
		"user_id":     ownerID,
		"name":        name,
		"description": description,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.PlID, nil
}

type playlistResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (p playlistResponse) toDomain() *domain.Playlist {
	return &domain.Playlist{
		ID:           p.ID,
		OwnerID:      p.UserID,
		Name:         p.Name,
		Description:  p.Description,
		ThumbnailURL: p.ThumbnailURL,
	}
}

// GetPlaylist returns the playlist, optionally scoped to an owner.
func (c *Client) GetPlaylist(
	ctx context.Context,
	playlistID, ownerID int64,
) (*domain.Playlist, error) {
	path := fmt.Sprintf("/playlist/%d", playlistID)
	if ownerID != 0 {
		path += fmt.Sprintf("?user_id=%d", ownerID)
	}

	var out playlistResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// ListPlaylists returns all playlists owned by the user.
func (c *Client) ListPlaylists(ctx context.Context, ownerID int64) ([]*domain.Playlist, error) {
	var out []playlistResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/playlists/%d", ownerID), nil, &out); err != nil {
		return nil, err
	}

	playlists := make([]*domain.Playlist, len(out))
	for i, p := range out {
		playlists[i] = p.toDomain()
	}
	return playlists, nil
}

// ListTracks returns the playlist's tracks in insertion order.
func (c *Client) ListTracks(
	ctx context.Context,
	playlistID int64,
) ([]*domain.PlaylistTrack, error) {
	var tuples [][2]json.RawMessage
	path := fmt.Sprintf("/playlist/%d/tracks", playlistID)
	if err := c.do(ctx, http.MethodGet, path, nil, &tuples); err != nil {
		return nil, err
	}

	tracks := make([]*domain.PlaylistTrack, len(tuples))
	for i, tuple := range tuples {
		var id int64
		if err := json.Unmarshal(tuple[0], &id); err != nil {
			return nil, fmt.Errorf("failed to decode track tuple: %w", err)
		}
		var payload struct {
			PlID   int64  `json:"plId"`
			UserID int64  `json:"userId"`
			Track  string `json:"track"`
		}
		if err := json.Unmarshal(tuple[1], &payload); err != nil {
			return nil, fmt.Errorf("failed to decode track tuple: %w", err)
		}
		tracks[i] = &domain.PlaylistTrack{
			ID:         id,
			PlaylistID: payload.PlID,
			OwnerID:    payload.UserID,
			Encoded:    payload.Track,
		}
	}
	return tracks, nil
}

// AppendTrack appends one encoded payload.
func (c *Client) AppendTrack(
	ctx context.Context,
	playlistID, ownerID int64,
	encoded string,
) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/playlist/%d/track", playlistID), map[string]any{
		"user_id": ownerID,
		"track":   encoded,
	}, nil)
}

// AppendTracks appends a batch atomically.
func (c *Client) AppendTracks(
	ctx context.Context,
	playlistID, ownerID int64,
	encoded []string,
) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/playlist/%d/tracks", playlistID), map[string]any{
		"user_id": ownerID,
		"tracks":  encoded,
	}, nil)
}

// EditPlaylist applies the non-nil fields and returns the names of the fields
// actually changed.
func (c *Client) EditPlaylist(
	ctx context.Context,
	playlistID int64,
	fields domain.EditFields,
) ([]string, error) {
	body := map[string]any{}
	if fields.Name != nil {
		body["name"] = *fields.Name
	}
	if fields.Description != nil {
		body["description"] = *fields.Description
	}
	if fields.ThumbnailURL != nil {
		body["thumbnail_url"] = *fields.ThumbnailURL
	}

	var out struct {
		Edited []string `json:"edited"`
	}
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/playlist/%d", playlistID), body, &out)
	if err != nil {
		return nil, err
	}
	return out.Edited, nil
}

// ClearTracks removes all tracks from the playlist.
func (c *Client) ClearTracks(ctx context.Context, playlistID, ownerID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/playlist/%d/tracks", playlistID), map[string]any{
		"user_id": ownerID,
	}, nil)
}

// DeletePlaylist removes the playlist and cascades track deletion.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID, ownerID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/playlist/%d", playlistID), map[string]any{
		"user_id": ownerID,
	}, nil)
}

// DeleteTrack is not exposed over the HTTP surface; it is served directly by
// the store in-process.
func (c *Client) DeleteTrack(_ context.Context, _, _, _ int64) error {
	return fmt.Errorf("delete track is not supported over the playlist API")
}

// Ensure Client implements domain.Store.
var _ domain.Store = (*Client)(nil)
