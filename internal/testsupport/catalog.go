// Package testsupport provides shared fixtures: a scriptable in-memory
// catalog client and store/policy constructors used across package tests.
package testsupport

import (
	"context"
	"fmt"
	"sync"

	"trackfeed/internal/music"
	"trackfeed/internal/spotify"
)

// FakeCatalog is a scriptable spotify.Catalog. Populate the maps, then
// inspect Calls to assert upstream traffic. Safe for concurrent use.
type FakeCatalog struct {
	mu sync.Mutex

	// PageSize controls pagination granularity; defaults to 2 so tests
	// exercise multi-page walks with small fixtures.
	PageSize int

	Artists   map[string]music.Artist
	Albums    map[string]map[music.AlbumType][]music.CatalogEntry
	Tracks    map[string][]music.Track
	Details   map[string]music.TrackDetail
	ISRCHits  map[string]spotify.ISRCHit
	Playlists map[string][]music.Artist

	// Errors maps "operation:id" to an injected failure. FailuresLeft
	// bounds how many times each injected failure fires; zero means always.
	Errors       map[string]error
	FailuresLeft map[string]int

	Calls map[string]int
}

var _ spotify.Catalog = (*FakeCatalog)(nil)

func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		PageSize:     2,
		Artists:      make(map[string]music.Artist),
		Albums:       make(map[string]map[music.AlbumType][]music.CatalogEntry),
		Tracks:       make(map[string][]music.Track),
		Details:      make(map[string]music.TrackDetail),
		ISRCHits:     make(map[string]spotify.ISRCHit),
		Playlists:    make(map[string][]music.Artist),
		Errors:       make(map[string]error),
		FailuresLeft: make(map[string]int),
		Calls:        make(map[string]int),
	}
}

// AddAlbum scripts a catalog entry and its track listing.
func (f *FakeCatalog) AddAlbum(entry music.CatalogEntry, tracks ...music.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byType, ok := f.Albums[entry.ArtistID]
	if !ok {
		byType = make(map[music.AlbumType][]music.CatalogEntry)
		f.Albums[entry.ArtistID] = byType
	}
	byType[entry.Type] = append(byType[entry.Type], entry)
	f.Tracks[entry.ID] = append(f.Tracks[entry.ID], tracks...)
}

// InjectError makes the given operation fail for the given id. If times is
// positive the failure clears after firing that many times.
func (f *FakeCatalog) InjectError(operation, id string, err error, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := operation + ":" + id
	f.Errors[key] = err
	if times > 0 {
		f.FailuresLeft[key] = times
	}
}

// CallCount returns how many times an operation ran (any id).
func (f *FakeCatalog) CallCount(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[operation]
}

func (f *FakeCatalog) record(operation, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[operation]++
	key := operation + ":" + id
	err, ok := f.Errors[key]
	if !ok {
		return nil
	}
	if left, bounded := f.FailuresLeft[key]; bounded {
		if left <= 0 {
			return nil
		}
		f.FailuresLeft[key] = left - 1
	}
	return err
}

func (f *FakeCatalog) page(total int, offset int) (end int, hasNext bool) {
	size := f.PageSize
	if size <= 0 {
		size = 2
	}
	end = offset + size
	if end >= total {
		return total, false
	}
	return end, true
}

func (f *FakeCatalog) ArtistAlbums(ctx context.Context, artistID string, albumType music.AlbumType, offset int) (spotify.AlbumPage, error) {
	if err := f.record("artist_albums", artistID); err != nil {
		return spotify.AlbumPage{}, err
	}
	if err := ctx.Err(); err != nil {
		return spotify.AlbumPage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.Albums[artistID][albumType]
	if offset >= len(entries) {
		return spotify.AlbumPage{Offset: offset, NextOffset: offset}, nil
	}
	end, hasNext := f.page(len(entries), offset)
	// A zero ReleaseDate stands in for an unparseable upstream date: the
	// entry is dropped from the page but still occupies its offset slot,
	// matching the production client.
	page := make([]music.CatalogEntry, 0, end-offset)
	for _, entry := range entries[offset:end] {
		if entry.ReleaseDate.IsZero() {
			continue
		}
		page = append(page, entry)
	}
	return spotify.AlbumPage{Entries: page, Offset: offset, NextOffset: end, HasNext: hasNext}, nil
}

func (f *FakeCatalog) AlbumTracks(ctx context.Context, albumID string, offset int) (spotify.TrackPage, error) {
	if err := f.record("album_tracks", albumID); err != nil {
		return spotify.TrackPage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tracks := f.Tracks[albumID]
	if offset >= len(tracks) {
		return spotify.TrackPage{Offset: offset}, nil
	}
	end, hasNext := f.page(len(tracks), offset)
	page := make([]music.Track, end-offset)
	copy(page, tracks[offset:end])
	return spotify.TrackPage{Tracks: page, Offset: offset, HasNext: hasNext}, nil
}

func (f *FakeCatalog) Track(ctx context.Context, trackID string) (music.TrackDetail, error) {
	if err := f.record("track", trackID); err != nil {
		return music.TrackDetail{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	detail, ok := f.Details[trackID]
	if !ok {
		return music.TrackDetail{}, fmt.Errorf("track %s not scripted: %w", trackID, spotify.ErrPermanent)
	}
	return detail, nil
}

func (f *FakeCatalog) EarliestByISRC(ctx context.Context, isrc string) (spotify.ISRCHit, error) {
	if err := f.record("search_isrc", isrc); err != nil {
		return spotify.ISRCHit{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ISRCHits[isrc], nil
}

func (f *FakeCatalog) Artist(ctx context.Context, artistID string) (music.Artist, error) {
	if err := f.record("artist", artistID); err != nil {
		return music.Artist{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	artist, ok := f.Artists[artistID]
	if !ok {
		return music.Artist{}, fmt.Errorf("artist %s not scripted: %w", artistID, spotify.ErrPermanent)
	}
	return artist, nil
}

func (f *FakeCatalog) SearchArtist(ctx context.Context, name string) (music.Artist, error) {
	if err := f.record("search_artist", name); err != nil {
		return music.Artist{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, artist := range f.Artists {
		if artist.Name == name {
			return artist, nil
		}
	}
	return music.Artist{}, fmt.Errorf("no artist match for %q: %w", name, spotify.ErrPermanent)
}

func (f *FakeCatalog) PlaylistArtists(ctx context.Context, playlistID string) ([]music.Artist, error) {
	if err := f.record("playlist_tracks", playlistID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	artists, ok := f.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist %s not scripted: %w", playlistID, spotify.ErrPermanent)
	}
	return append([]music.Artist(nil), artists...), nil
}
