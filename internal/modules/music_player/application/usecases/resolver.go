package usecases

import (
	"context"

	"github.com/pyrumble/RumbleBot/internal/modules/music_player/application/ports"
	"github.com/pyrumble/RumbleBot/internal/modules/music_player/domain"
)

// ResolveInput contains the input for the Resolve use case.
type ResolveInput struct {
	Query      string
	CatalogTag string // empty selects the default catalog
	SearchType domain.SearchType
}

// ResolveOutput contains the result of the Resolve use case. Exactly one of
// Track or Collection is populated; callers branch on IsCollection.
type ResolveOutput struct {
	IsCollection   bool
	Track          *domain.Track
	Collection     []*domain.Track
	CollectionName string
	CollectionURL  string
}

// ResolverService turns free-text queries, entity searches, and direct links
// into playable tracks via the audio node.
type ResolverService struct {
	node     ports.AudioNode
	catalogs *domain.CatalogRegistry
}

// NewResolverService creates a new ResolverService.
func NewResolverService(node ports.AudioNode, catalogs *domain.CatalogRegistry) *ResolverService {
	return &ResolverService{
		node:     node,
		catalogs: catalogs,
	}
}

// Resolve resolves a query into a track or an ordered collection.
//
// Direct links bypass catalog search entirely; disallowed platforms are
// rejected before any node call. Free text dispatches on the search type:
// track queries return the first catalog match, entity queries (album,
// playlist, artist) run a metadata search first and resolve the top
// candidate's canonical URL.
func (s *ResolverService) Resolve(ctx context.Context, input ResolveInput) (*ResolveOutput, error) {
	if domain.IsURL(input.Query) {
		if domain.IsUnsupportedURL(input.Query) {
			return nil, ErrUnsupportedLink
		}
		return s.load(ctx, input.Query)
	}

	if input.SearchType.IsEntity() {
		return s.resolveEntity(ctx, input)
	}

	catalog := s.catalogs.Lookup(input.CatalogTag)
	result, err := s.node.Load(ctx, catalog.Prefix+input.Query)
	if err != nil {
		return nil, err
	}
	if result.Type == ports.LoadTypeEmpty || result.Type == ports.LoadTypeError ||
		len(result.Tracks) == 0 {
		return nil, ErrNoResults
	}

	// Track search takes the first match regardless of result shape.
	return &ResolveOutput{Track: result.Tracks[0]}, nil
}

func (s *ResolverService) resolveEntity(
	ctx context.Context,
	input ResolveInput,
) (*ResolveOutput, error) {
	// Catalogs without entity-type search fall back to the default catalog.
	catalog := s.catalogs.EntityCapable(input.CatalogTag)

	candidates, err := s.node.SearchEntity(ctx, input.Query, input.SearchType, catalog)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoResults
	}

	return s.load(ctx, candidates[0].URL)
}

func (s *ResolverService) load(ctx context.Context, query string) (*ResolveOutput, error) {
	result, err := s.node.Load(ctx, query)
	if err != nil {
		return nil, err
	}

	switch result.Type {
	case ports.LoadTypeTrack:
		if len(result.Tracks) == 0 {
			return nil, ErrNoResults
		}
		return &ResolveOutput{Track: result.Tracks[0]}, nil
	case ports.LoadTypeCollection:
		if len(result.Tracks) == 0 {
			return nil, ErrNoResults
		}
		return &ResolveOutput{
			IsCollection:   true,
			Collection:     result.Tracks,
			CollectionName: result.CollectionName,
			CollectionURL:  result.CollectionURL,
		}, nil
	case ports.LoadTypeSearch:
		if len(result.Tracks) == 0 {
			return nil, ErrNoResults
		}
		return &ResolveOutput{Track: result.Tracks[0]}, nil
	default:
		return nil, ErrNoResults
	}
}
