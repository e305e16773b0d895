package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

// LoadType discriminates the shape of a load result.
type LoadType string

const (
	// LoadTypeTrack means a single resolved track.
	LoadTypeTrack LoadType = "track"
	// LoadTypeCollection means a playlist/album unrolled into ordered tracks.
	LoadTypeCollection LoadType = "collection"
	// LoadTypeSearch means an ordered list of search candidates.
	LoadTypeSearch LoadType = "search"
	// LoadTypeEmpty means the node found nothing.
	LoadTypeEmpty LoadType = "empty"
	// LoadTypeError means the node reported a load exception.
	LoadTypeError LoadType = "error"
)

// LoadResult is the audio node's answer to a load/search request.
type LoadResult struct {
	Type           LoadType
	Tracks         []*domain.Track
	CollectionName string
	CollectionURL  string
}

// EntityCandidate is one result of a catalog metadata search: the entity's
// display name and its canonical URL, resolvable into a track collection.
type EntityCandidate struct {
	Name string
	URL  string
}

// AudioNode is the opaque external service that performs catalog search,
// track decoding, and voice-channel audio streaming.
type AudioNode interface {
	// Load resolves a direct URL or a prefixed search query into tracks.
	Load(ctx context.Context, query string) (*LoadResult, error)

	// SearchEntity performs a catalog metadata search constrained to one
	// entity type (album/playlist/artist) on the given catalog.
	SearchEntity(
		ctx context.Context,
		query string,
		entity domain.SearchType,
		catalog domain.Catalog,
	) ([]EntityCandidate, error)

	// Decode re-hydrates opaque encoded payloads into full tracks.
	Decode(ctx context.Context, encoded []string) ([]*domain.Track, error)

	// Play submits a track to the node, replacing whatever is playing.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// Pause sets or clears the paused flag.
	Pause(ctx context.Context, guildID snowflake.ID, paused bool) error

	// Stop stops the current track without disconnecting.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Disconnect tears the node-side player down.
	Disconnect(ctx context.Context, guildID snowflake.ID) error
}
