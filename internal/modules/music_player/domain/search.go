package domain

import (
	"regexp"
	"strings"
)

// SearchType selects what kind of catalog entity a query should resolve to.
type SearchType string

const (
	SearchTypeTrack    SearchType = "track"
	SearchTypeAlbum    SearchType = "album"
	SearchTypePlaylist SearchType = "playlist"
	SearchTypeArtist   SearchType = "artist"
)

// IsEntity returns true for search types that go through the two-step
// metadata search (album/playlist/artist) rather than a direct track search.
func (t SearchType) IsEntity() bool {
	return t == SearchTypeAlbum || t == SearchTypePlaylist || t == SearchTypeArtist
}

// ParseSearchType converts a string to a SearchType, defaulting to track.
func ParseSearchType(s string) SearchType {
	switch SearchType(strings.ToLower(s)) {
	case SearchTypeAlbum:
		return SearchTypeAlbum
	case SearchTypePlaylist:
		return SearchTypePlaylist
	case SearchTypeArtist:
		return SearchTypeArtist
	default:
		return SearchTypeTrack
	}
}

// Catalog is a registered search strategy for one external music catalog.
// Prefix is the audio node's search prefix (e.g. "spsearch:"); EntitySearch
// reports whether the catalog supports album/playlist/artist metadata search.
type Catalog struct {
	Tag          string
	Prefix       string
	EntitySearch bool
}

// CatalogRegistry holds the known catalogs. Adding a catalog is additive:
// register a new tag and every dispatch site picks it up.
type CatalogRegistry struct {
	catalogs   map[string]Catalog
	defaultTag string
}

// NewCatalogRegistry creates an empty registry.
func NewCatalogRegistry() *CatalogRegistry {
	return &CatalogRegistry{catalogs: make(map[string]Catalog)}
}

// Register adds a catalog. The first registered catalog becomes the default.
func (r *CatalogRegistry) Register(c Catalog) {
	if len(r.catalogs) == 0 {
		r.defaultTag = c.Tag
	}
	r.catalogs[c.Tag] = c
}

// Default returns the default catalog.
func (r *CatalogRegistry) Default() Catalog {
	return r.catalogs[r.defaultTag]
}

// Lookup returns the catalog for the given tag, falling back to the default
// for unknown or empty tags.
func (r *CatalogRegistry) Lookup(tag string) Catalog {
	if c, ok := r.catalogs[tag]; ok {
		return c
	}
	return r.Default()
}

// EntityCapable returns the catalog for the tag if it supports entity-type
// search, otherwise the default catalog.
func (r *CatalogRegistry) EntityCapable(tag string) Catalog {
	c := r.Lookup(tag)
	if !c.EntitySearch {
		return r.Default()
	}
	return c
}

// DefaultCatalogs returns a registry with the built-in catalogs. Spotify is
// the default; SoundCloud has no entity-type search on the node.
func DefaultCatalogs() *CatalogRegistry {
	r := NewCatalogRegistry()
	r.Register(Catalog{Tag: "spotify", Prefix: "spsearch:", EntitySearch: true})
	r.Register(Catalog{Tag: "deezer", Prefix: "dzsearch:", EntitySearch: true})
	r.Register(Catalog{Tag: "applemusic", Prefix: "amsearch:", EntitySearch: true})
	r.Register(Catalog{Tag: "soundcloud", Prefix: "scsearch:", EntitySearch: false})
	return r
}

var urlPattern = regexp.MustCompile(
	`https?://(www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_\+.~#?&/=]*)`,
)

// IsURL reports whether the query is a direct link.
func IsURL(query string) bool {
	return urlPattern.MatchString(query)
}

// IsUnsupportedURL reports whether the link belongs to a disallowed video
// platform. Such links are rejected before any audio-node call.
func IsUnsupportedURL(query string) bool {
	return strings.HasPrefix(query, "https://www.youtube.com/watch") ||
		strings.HasPrefix(query, "https://youtu.be/")
}
