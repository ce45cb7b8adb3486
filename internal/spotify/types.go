package spotify

import (
	"context"
	"time"

	"trackfeed/internal/music"
)

// AlbumPage is one page of an artist's catalog for a single album type.
// NextOffset is derived from the raw upstream item count, so entries dropped
// client-side (unparseable release dates) still advance pagination.
type AlbumPage struct {
	Entries    []music.CatalogEntry
	Offset     int
	NextOffset int
	HasNext    bool
}

// TrackPage is one page of an album's track listing.
type TrackPage struct {
	Tracks  []music.Track
	Offset  int
	HasNext bool
}

// ISRCHit is the earliest known appearance of a recording.
type ISRCHit struct {
	Found       bool
	ReleaseDate time.Time
	AlbumName   string
}

// Catalog is the upstream surface the engine consumes. The production
// implementation is Client; tests inject a fake.
type Catalog interface {
	// ArtistAlbums lists one page of an artist's catalog entries of the
	// given type. Entries are ordered by descending release date within the
	// type; there is no ordering guarantee across types.
	ArtistAlbums(ctx context.Context, artistID string, albumType music.AlbumType, offset int) (AlbumPage, error)
	// AlbumTracks lists one page of an entry's tracks.
	AlbumTracks(ctx context.Context, albumID string, offset int) (TrackPage, error)
	// Track fetches the detail fields (ISRC, popularity, URL) for a track.
	Track(ctx context.Context, trackID string) (music.TrackDetail, error)
	// EarliestByISRC finds the earliest appearance of a recording across the
	// whole catalog.
	EarliestByISRC(ctx context.Context, isrc string) (ISRCHit, error)
	// Artist resolves an artist by catalog id.
	Artist(ctx context.Context, artistID string) (music.Artist, error)
	// SearchArtist resolves an artist by name, returning the best match.
	SearchArtist(ctx context.Context, name string) (music.Artist, error)
	// PlaylistArtists collects the unique artists appearing on a playlist.
	PlaylistArtists(ctx context.Context, playlistID string) ([]music.Artist, error)
}

// Wire shapes for the Spotify Web API payloads the client consumes.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type pagingEnvelope struct {
	Next   string `json:"next"`
	Offset int    `json:"offset"`
	Total  int    `json:"total"`
}

type albumObject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AlbumType   string `json:"album_type"`
	ReleaseDate string `json:"release_date"`
}

type albumsResponse struct {
	pagingEnvelope
	Items []albumObject `json:"items"`
}

type trackObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumTracksResponse struct {
	pagingEnvelope
	Items []trackObject `json:"items"`
}

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fullTrackObject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Popularity  int    `json:"popularity"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Album struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
	} `json:"album"`
}

type trackSearchResponse struct {
	Tracks struct {
		Items []fullTrackObject `json:"items"`
	} `json:"tracks"`
}

type artistSearchResponse struct {
	Artists struct {
		Items []artistObject `json:"items"`
	} `json:"artists"`
}

type playlistTracksResponse struct {
	pagingEnvelope
	Items []struct {
		Track *struct {
			Artists []artistObject `json:"artists"`
		} `json:"track"`
	} `json:"items"`
}
