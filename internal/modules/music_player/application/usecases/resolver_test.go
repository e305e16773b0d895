package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

func TestResolverService_RejectsUnsupportedLinks(t *testing.T) {
	node := &mockAudioNode{}
	service := NewResolverService(node, domain.DefaultCatalogs())

	queries := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
	}
	for _, query := range queries {
		_, err := service.Resolve(context.Background(), ResolveInput{
			Query:      query,
			SearchType: domain.SearchTypeTrack,
		})
		if !errors.Is(err, ErrUnsupportedLink) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnsupportedLink", query, err)
		}
	}

	// Rejection must happen before any node call.
	if len(node.loadQueries) != 0 {
		t.Errorf("node received %d load calls, want 0", len(node.loadQueries))
	}
	if node.searchCalls != 0 {
		t.Errorf("node received %d entity searches, want 0", node.searchCalls)
	}
}

func TestResolverService_DirectLinkBypassesSearch(t *testing.T) {
	node := &mockAudioNode{
		loadResult: &ports.LoadResult{
			Type:   ports.LoadTypeTrack,
			Tracks: []*domain.Track{mockTrack("1")},
		},
	}
	service := NewResolverService(node, domain.DefaultCatalogs())

	output, err := service.Resolve(context.Background(), ResolveInput{
		Query:      "https://open.spotify.com/track/abc123",
		SearchType: domain.SearchTypeTrack,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if output.IsCollection {
		t.Error("expected single track, got collection")
	}
	if output.Track.ID != "1" {
		t.Errorf("Track.ID = %q, want %q", output.Track.ID, "1")
	}
	if got := node.loadQueries[0]; got != "https://open.spotify.com/track/abc123" {
		t.Errorf("load query = %q, want the raw URL", got)
	}
}

func TestResolverService_TrackSearch(t *testing.T) {
	tests := []struct {
		name       string
		catalogTag string
		wantPrefix string
	}{
		{name: "default catalog", catalogTag: "", wantPrefix: "spsearch:"},
		{name: "named catalog", catalogTag: "deezer", wantPrefix: "dzsearch:"},
		{name: "unknown catalog falls back", catalogTag: "bandcamp", wantPrefix: "spsearch:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &mockAudioNode{
				loadResult: &ports.LoadResult{
					Type: ports.LoadTypeSearch,
					Tracks: []*domain.Track{
						mockTrack("first"),
						mockTrack("second"),
					},
				},
			}
			service := NewResolverService(node, domain.DefaultCatalogs())

			output, err := service.Resolve(context.Background(), ResolveInput{
				Query:      "never gonna give you up",
				CatalogTag: tt.catalogTag,
				SearchType: domain.SearchTypeTrack,
			})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if output.Track.ID != "first" {
				t.Errorf("Track.ID = %q, want first match", output.Track.ID)
			}
			want := tt.wantPrefix + "never gonna give you up"
			if got := node.loadQueries[0]; got != want {
				t.Errorf("load query = %q, want %q", got, want)
			}
		})
	}
}

func TestResolverService_TrackSearchNoResults(t *testing.T) {
	node := &mockAudioNode{
		loadResult: &ports.LoadResult{Type: ports.LoadTypeEmpty},
	}
	service := NewResolverService(node, domain.DefaultCatalogs())

	_, err := service.Resolve(context.Background(), ResolveInput{
		Query:      "nonexistent song",
		SearchType: domain.SearchTypeTrack,
	})
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("Resolve() error = %v, want ErrNoResults", err)
	}
}

func TestResolverService_EntitySearch(t *testing.T) {
	node := &mockAudioNode{
		candidates: []ports.EntityCandidate{
			{Name: "Discovery", URL: "https://open.spotify.com/album/discovery"},
			{Name: "Discovery (Deluxe)", URL: "https://open.spotify.com/album/deluxe"},
		},
		loadResult: &ports.LoadResult{
			Type:           ports.LoadTypeCollection,
			CollectionName: "Discovery",
			CollectionURL:  "https://open.spotify.com/album/discovery",
			Tracks: []*domain.Track{
				mockTrack("a"),
				mockTrack("b"),
			},
		},
	}
	service := NewResolverService(node, domain.DefaultCatalogs())

	output, err := service.Resolve(context.Background(), ResolveInput{
		Query:      "discovery",
		SearchType: domain.SearchTypeAlbum,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !output.IsCollection {
		t.Fatal("expected a collection result")
	}
	if len(output.Collection) != 2 {
		t.Errorf("len(Collection) = %d, want 2", len(output.Collection))
	}
	if output.CollectionName != "Discovery" {
		t.Errorf("CollectionName = %q, want %q", output.CollectionName, "Discovery")
	}
	// The first candidate's canonical URL must be what gets resolved.
	if got := node.loadQueries[0]; got != "https://open.spotify.com/album/discovery" {
		t.Errorf("load query = %q, want first candidate URL", got)
	}
}

func TestResolverService_EntitySearchNoCandidates(t *testing.T) {
	node := &mockAudioNode{}
	service := NewResolverService(node, domain.DefaultCatalogs())

	_, err := service.Resolve(context.Background(), ResolveInput{
		Query:      "nonexistent playlist",
		SearchType: domain.SearchTypePlaylist,
	})
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("Resolve() error = %v, want ErrNoResults", err)
	}
	if len(node.loadQueries) != 0 {
		t.Error("empty metadata search must not trigger a load")
	}
}

func TestResolverService_NodeErrorPropagates(t *testing.T) {
	nodeErr := errors.New("node unreachable")
	node := &mockAudioNode{loadErr: nodeErr}
	service := NewResolverService(node, domain.DefaultCatalogs())

	_, err := service.Resolve(context.Background(), ResolveInput{
		Query:      "some song",
		SearchType: domain.SearchTypeTrack,
	})
	if !errors.Is(err, nodeErr) {
		t.Errorf("Resolve() error = %v, want node error", err)
	}
}
