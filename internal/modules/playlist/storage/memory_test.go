package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/pyrumble/RumbleBot/internal/modules/playlist/domain"
)

const (
	ownerID    = int64(100)
	strangerID = int64(200)
)

func strPtr(s string) *string {
	return &s
}

func createPlaylist(t *testing.T, store domain.Store) int64 {
	t.Helper()
	id, err := store.CreatePlaylist(context.Background(), ownerID, "favorites", "my tracks")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	return id
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)

	p, err := store.GetPlaylist(ctx, id, 0)
	if err != nil {
		t.Fatalf("GetPlaylist() error = %v", err)
	}
	if p.Name != "favorites" || p.OwnerID != ownerID {
		t.Errorf("GetPlaylist() = %+v, want name favorites owned by %d", p, ownerID)
	}

	// Ownership-scoped lookup by a stranger misses.
	if _, err := store.GetPlaylist(ctx, id, strangerID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetPlaylist(stranger) error = %v, want ErrNotFound", err)
	}
	// Unscoped lookup works for read-only display.
	if _, err := store.GetPlaylist(ctx, id, 0); err != nil {
		t.Errorf("GetPlaylist(unscoped) error = %v", err)
	}
}

func TestMemoryStore_AppendAndListTracks(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)

	for _, encoded := range []string{"p1", "p2", "p3"} {
		if err := store.AppendTrack(ctx, id, ownerID, encoded); err != nil {
			t.Fatalf("AppendTrack(%q) error = %v", encoded, err)
		}
	}

	tracks, err := store.ListTracks(ctx, id)
	if err != nil {
		t.Fatalf("ListTracks() error = %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("len(tracks) = %d, want 3", len(tracks))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if tracks[i].Encoded != want {
			t.Errorf("tracks[%d].Encoded = %q, want %q (insertion order)", i, tracks[i].Encoded, want)
		}
	}
}

func TestMemoryStore_AppendForbiddenForNonOwner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)

	err := store.AppendTracks(ctx, id, strangerID, []string{"sneaky"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("AppendTracks(stranger) error = %v, want ErrForbidden", err)
	}

	tracks, _ := store.ListTracks(ctx, id)
	if len(tracks) != 0 {
		t.Error("a forbidden append must not leave any tracks behind")
	}
}

func TestMemoryStore_EditPlaylist(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)

	tests := []struct {
		name        string
		fields      domain.EditFields
		wantChanged []string
	}{
		{
			name:        "single field",
			fields:      domain.EditFields{Name: strPtr("renamed")},
			wantChanged: []string{"name"},
		},
		{
			name: "all fields",
			fields: domain.EditFields{
				Name:         strPtr("again"),
				Description:  strPtr("new desc"),
				ThumbnailURL: strPtr("https://example.com/a.png"),
			},
			wantChanged: []string{"name", "description", "thumbnail_url"},
		},
		{
			name:        "no fields",
			fields:      domain.EditFields{},
			wantChanged: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := store.EditPlaylist(ctx, id, tt.fields)
			if err != nil {
				t.Fatalf("EditPlaylist() error = %v", err)
			}
			if len(changed) != len(tt.wantChanged) {
				t.Fatalf("changed = %v, want %v", changed, tt.wantChanged)
			}
			for i := range changed {
				if changed[i] != tt.wantChanged[i] {
					t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
					break
				}
			}
		})
	}

	p, _ := store.GetPlaylist(ctx, id, 0)
	if p.Name != "again" || p.Description != "new desc" {
		t.Errorf("playlist fields not applied: %+v", p)
	}
}

func TestMemoryStore_EditMissingPlaylist(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.EditPlaylist(context.Background(), 999, domain.EditFields{Name: strPtr("x")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("EditPlaylist(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_DeleteHidesExistenceFromNonOwner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)

	// A non-owner's delete must look identical to deleting a missing playlist.
	errStranger := store.DeletePlaylist(ctx, id, strangerID)
	errMissing := store.DeletePlaylist(ctx, 999, strangerID)
	if !errors.Is(errStranger, domain.ErrNotFound) || !errors.Is(errMissing, domain.ErrNotFound) {
		t.Fatalf("delete errors = %v / %v, want ErrNotFound for both", errStranger, errMissing)
	}

	if _, err := store.GetPlaylist(ctx, id, 0); err != nil {
		t.Error("playlist should survive a stranger's delete")
	}
}

func TestMemoryStore_DeleteCascadesTracks(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)
	_ = store.AppendTracks(ctx, id, ownerID, []string{"a", "b"})

	if err := store.DeletePlaylist(ctx, id, ownerID); err != nil {
		t.Fatalf("DeletePlaylist() error = %v", err)
	}

	tracks, _ := store.ListTracks(ctx, id)
	if len(tracks) != 0 {
		t.Error("tracks must be deleted with their playlist")
	}
}

func TestMemoryStore_ClearTracks(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)
	_ = store.AppendTracks(ctx, id, ownerID, []string{"a", "b"})

	if err := store.ClearTracks(ctx, id, strangerID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("ClearTracks(stranger) error = %v, want ErrForbidden", err)
	}
	if err := store.ClearTracks(ctx, id, ownerID); err != nil {
		t.Fatalf("ClearTracks() error = %v", err)
	}
	tracks, _ := store.ListTracks(ctx, id)
	if len(tracks) != 0 {
		t.Error("tracks should be cleared")
	}
	if _, err := store.GetPlaylist(ctx, id, 0); err != nil {
		t.Error("clearing tracks must not delete the playlist")
	}
}

func TestMemoryStore_DeleteTrack(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := createPlaylist(t, store)
	_ = store.AppendTracks(ctx, id, ownerID, []string{"a", "b", "c"})

	tracks, _ := store.ListTracks(ctx, id)
	if err := store.DeleteTrack(ctx, id, ownerID, tracks[1].ID); err != nil {
		t.Fatalf("DeleteTrack() error = %v", err)
	}

	remaining, _ := store.ListTracks(ctx, id)
	if len(remaining) != 2 {
		t.Fatalf("len(remaining) = %d, want 2", len(remaining))
	}
	if remaining[0].Encoded != "a" || remaining[1].Encoded != "c" {
		t.Errorf("remaining order = %q, %q; want a, c", remaining[0].Encoded, remaining[1].Encoded)
	}

	if err := store.DeleteTrack(ctx, id, strangerID, remaining[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteTrack(stranger) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ListPlaylists(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := createPlaylist(t, store)
	second, _ := store.CreatePlaylist(ctx, ownerID, "second", "")
	_, _ = store.CreatePlaylist(ctx, strangerID, "other", "")

	playlists, err := store.ListPlaylists(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListPlaylists() error = %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("len(playlists) = %d, want 2", len(playlists))
	}
	if playlists[0].ID != first || playlists[1].ID != second {
		t.Error("playlists should be ordered by creation")
	}
}
