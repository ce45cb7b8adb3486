// Package fetcher walks an artist's catalog pages and turns them into
// releases within a lookback window. Upstream groups entries by album type
// and sorts by date only within each type, so each type gets its own cursor
// and its own early stop. One type running out of recent pages never stops
// the scan of another.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"trackfeed/internal/isrc"
	"trackfeed/internal/logging"
	"trackfeed/internal/music"
	"trackfeed/internal/noise"
	"trackfeed/internal/retry"
	"trackfeed/internal/spotify"
)

type cursorState int

const (
	scanning cursorState = iota
	earlyStopped
)

// cursor tracks pagination progress for one album type.
type cursor struct {
	albumType music.AlbumType
	offset    int
	state     cursorState
}

// Fetcher resolves an artist's recent catalog into releases. All upstream
// calls go through the shared retry policy.
type Fetcher struct {
	catalog  spotify.Catalog
	policy   *retry.Policy
	resolver *isrc.Resolver
	filter   *noise.Filter
	logger   *slog.Logger
}

func New(catalog spotify.Catalog, policy *retry.Policy, resolver *isrc.Resolver, filter *noise.Filter, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		catalog:  catalog,
		policy:   policy,
		resolver: resolver,
		filter:   filter,
		logger:   logging.NewComponentLogger(logger, "fetcher"),
	}
}

// FetchArtist walks the artist's catalog and returns every release dated at
// or after cutoff, deduplicated by ISRC and with noise recordings removed.
// Recordings sharing an ISRC collapse to one release bearing the earliest
// known date and album name.
func (f *Fetcher) FetchArtist(ctx context.Context, artist music.Artist, cutoff time.Time) ([]music.Release, error) {
	entries, err := f.collectEntries(ctx, artist.ID, cutoff)
	if err != nil {
		return nil, err
	}

	byISRC := make(map[string]music.Release)
	var withoutISRC []music.Release
	for _, entry := range entries {
		releases, err := f.entryReleases(ctx, artist, entry, cutoff)
		if err != nil {
			return nil, err
		}
		for _, release := range releases {
			if release.ISRC == "" {
				withoutISRC = append(withoutISRC, release)
				continue
			}
			existing, seen := byISRC[release.ISRC]
			if !seen || release.ReleaseDate.Before(existing.ReleaseDate) {
				byISRC[release.ISRC] = release
			}
		}
	}

	merged := withoutISRC
	for _, release := range byISRC {
		merged = append(merged, release)
	}

	var out []music.Release
	for _, release := range merged {
		if f.filter.IsNoise(release.TrackName) {
			f.logger.Debug("excluding noise recording",
				logging.String(logging.FieldTrackID, release.TrackID),
				logging.String("track_name", release.TrackName))
			continue
		}
		out = append(out, release)
	}
	sortReleases(out)
	return out, nil
}

// collectEntries pages through each album type independently. A page whose
// entries are all older than cutoff stops that type; entries older than
// cutoff inside a page are dropped but the page is still scanned in full.
func (f *Fetcher) collectEntries(ctx context.Context, artistID string, cutoff time.Time) ([]music.CatalogEntry, error) {
	var collected []music.CatalogEntry
	for _, albumType := range music.AlbumTypes() {
		cur := cursor{albumType: albumType}
		for cur.state == scanning {
			var page spotify.AlbumPage
			err := f.policy.Execute(ctx, "artist_albums", func(ctx context.Context) error {
				var callErr error
				page, callErr = f.catalog.ArtistAlbums(ctx, artistID, cur.albumType, cur.offset)
				return callErr
			})
			if err != nil {
				return nil, fmt.Errorf("list %s entries for %s: %w", cur.albumType, artistID, err)
			}
			if len(page.Entries) == 0 {
				if !page.HasNext {
					break
				}
				// Every item on the page was dropped client-side; that says
				// nothing about dates, so keep walking.
				cur.offset = page.NextOffset
				continue
			}

			anyRecent := false
			for _, entry := range page.Entries {
				if entry.ReleaseDate.Before(cutoff) {
					continue
				}
				anyRecent = true
				collected = append(collected, entry)
			}
			if !anyRecent {
				cur.state = earlyStopped
				f.logger.Debug("early stop",
					logging.String(logging.FieldArtistID, artistID),
					logging.String("album_type", string(cur.albumType)),
					logging.Int("offset", cur.offset))
				continue
			}
			if !page.HasNext {
				break
			}
			// Advance by the raw item count, not len(page.Entries): the
			// client may have dropped malformed items from the page, and
			// re-requesting their slots would surface duplicates.
			cur.offset = page.NextOffset
		}
	}
	return collected, nil
}

// entryReleases expands one catalog entry into releases: its track listing,
// a detail fetch per track, and ISRC resolution. A track whose detail call
// fails is skipped with a warning rather than failing the artist.
func (f *Fetcher) entryReleases(ctx context.Context, artist music.Artist, entry music.CatalogEntry, cutoff time.Time) ([]music.Release, error) {
	tracks, err := f.collectTracks(ctx, entry.ID)
	if err != nil {
		return nil, err
	}

	var releases []music.Release
	for _, track := range tracks {
		var detail music.TrackDetail
		err := f.policy.Execute(ctx, "track", func(ctx context.Context) error {
			var callErr error
			detail, callErr = f.catalog.Track(ctx, track.ID)
			return callErr
		})
		if err != nil {
			f.logger.Warn("skipping track, detail fetch failed",
				logging.String(logging.FieldTrackID, track.ID),
				logging.String(logging.FieldAlbumID, entry.ID),
				logging.Error(err))
			continue
		}

		resolution, err := f.resolver.Resolve(ctx, detail.ISRC, entry.ReleaseDate, entry.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve isrc for track %s: %w", track.ID, err)
		}
		// Re-releases resolve to their original date and fall out of the
		// window here even though the containing entry was recent.
		if resolution.ReleaseDate.Before(cutoff) {
			continue
		}

		releases = append(releases, music.Release{
			ArtistID:    artist.ID,
			ArtistName:  artist.Name,
			AlbumID:     entry.ID,
			TrackID:     detail.ID,
			ISRC:        detail.ISRC,
			ReleaseDate: resolution.ReleaseDate,
			AlbumName:   resolution.AlbumName,
			TrackName:   detail.Name,
			AlbumType:   entry.Type,
			Popularity:  detail.Popularity,
			URL:         detail.URL,
		})
	}
	return releases, nil
}

func sortReleases(releases []music.Release) {
	sort.Slice(releases, func(i, j int) bool {
		if !releases[i].ReleaseDate.Equal(releases[j].ReleaseDate) {
			return releases[i].ReleaseDate.After(releases[j].ReleaseDate)
		}
		return releases[i].TrackID < releases[j].TrackID
	})
}

func (f *Fetcher) collectTracks(ctx context.Context, albumID string) ([]music.Track, error) {
	var tracks []music.Track
	offset := 0
	for {
		var page spotify.TrackPage
		err := f.policy.Execute(ctx, "album_tracks", func(ctx context.Context) error {
			var callErr error
			page, callErr = f.catalog.AlbumTracks(ctx, albumID, offset)
			return callErr
		})
		if err != nil {
			return nil, fmt.Errorf("list tracks for %s: %w", albumID, err)
		}
		tracks = append(tracks, page.Tracks...)
		if !page.HasNext || len(page.Tracks) == 0 {
			return tracks, nil
		}
		offset += len(page.Tracks)
	}
}
