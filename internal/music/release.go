package music

import (
	"regexp"
	"time"
)

// AlbumType identifies the catalog grouping an entry belongs to. The
// upstream catalog orders entries by date only within one type, never
// globally, which is why pagination treats each type independently.
type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeCompilation AlbumType = "compilation"
)

// AlbumTypes lists every catalog grouping in fetch order.
func AlbumTypes() []AlbumType {
	return []AlbumType{AlbumTypeAlbum, AlbumTypeSingle, AlbumTypeCompilation}
}

// spotifyIDPattern matches the base62, 22-character catalog identifiers.
var spotifyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{22}$`)

// ValidID reports whether id looks like a catalog-assigned identifier.
func ValidID(id string) bool {
	return spotifyIDPattern.MatchString(id)
}

// Artist is a tracked creator. Identity is the catalog-assigned ID; the name
// is informational only.
type Artist struct {
	ID      string
	Name    string
	AddedAt time.Time
}

// CatalogEntry is one album, single, or compilation in an artist's catalog.
type CatalogEntry struct {
	ID          string
	Name        string
	Type        AlbumType
	ArtistID    string
	ReleaseDate time.Time
}

// Track is one recording as listed on a catalog entry, before its detail
// fetch.
type Track struct {
	ID   string
	Name string
}

// TrackDetail carries the per-track fields only available from a dedicated
// detail call.
type TrackDetail struct {
	ID         string
	Name       string
	ISRC       string
	Popularity int
	URL        string
}

// Release is the unit of output: one surfaced recording. Uniqueness key is
// TrackID. After deduplication a canonical recording (same ISRC) appears at
// most once per run, carrying the earliest known release date and album
// name for that recording.
type Release struct {
	ArtistID    string
	ArtistName  string
	AlbumID     string
	TrackID     string
	ISRC        string
	ReleaseDate time.Time
	AlbumName   string
	TrackName   string
	AlbumType   AlbumType
	Popularity  int
	URL         string
	FetchedAt   time.Time
}
