package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trackfeed/internal/music"
)

// UpsertReleases writes releases keyed by track_id, stamping fetched_at.
// Each row is an atomic upsert so concurrent workers on different keys never
// conflict.
func (s *Store) UpsertReleases(ctx context.Context, releases []music.Release, fetchedAt time.Time) error {
	const query = `INSERT INTO releases_cache (
            track_id, artist_id, artist_name, album_id, isrc, release_date,
            album_name, track_name, album_type, popularity, url, fetched_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(track_id) DO UPDATE SET
            artist_id = excluded.artist_id,
            artist_name = excluded.artist_name,
            album_id = excluded.album_id,
            isrc = excluded.isrc,
            release_date = excluded.release_date,
            album_name = excluded.album_name,
            track_name = excluded.track_name,
            album_type = excluded.album_type,
            popularity = excluded.popularity,
            url = excluded.url,
            fetched_at = excluded.fetched_at`

	stamp := fetchedAt.UTC().Format(time.RFC3339Nano)
	for _, release := range releases {
		_, err := s.execWithRetry(ctx, query,
			release.TrackID,
			release.ArtistID,
			release.ArtistName,
			release.AlbumID,
			nullableString(release.ISRC),
			music.FormatReleaseDate(release.ReleaseDate),
			release.AlbumName,
			release.TrackName,
			string(release.AlbumType),
			release.Popularity,
			release.URL,
			stamp,
		)
		if err != nil {
			return fmt.Errorf("upsert release %s: %w", release.TrackID, err)
		}
	}
	return nil
}

// CachedReleases returns all cached releases for an artist dated at or after
// cutoff, newest first. Rows with unparseable stored dates surface as
// ErrCacheCorrupt.
func (s *Store) CachedReleases(ctx context.Context, artistID string, cutoff time.Time) ([]music.Release, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT track_id, artist_id, artist_name, album_id, isrc, release_date,
		        album_name, track_name, album_type, popularity, url, fetched_at
		 FROM releases_cache
		 WHERE artist_id = ? AND release_date >= ?
		 ORDER BY release_date DESC, track_id ASC`,
		artistID, music.FormatReleaseDate(cutoff))
	if err != nil {
		return nil, fmt.Errorf("query cached releases: %w", err)
	}
	defer rows.Close()

	var releases []music.Release
	for rows.Next() {
		var (
			release                 music.Release
			isrc                    sql.NullString
			dateText, fetchedAtText string
			albumType               string
		)
		if err := rows.Scan(
			&release.TrackID,
			&release.ArtistID,
			&release.ArtistName,
			&release.AlbumID,
			&isrc,
			&dateText,
			&release.AlbumName,
			&release.TrackName,
			&albumType,
			&release.Popularity,
			&release.URL,
			&fetchedAtText,
		); err != nil {
			return nil, fmt.Errorf("scan cached release: %w", err)
		}
		release.ISRC = isrc.String
		release.AlbumType = music.AlbumType(albumType)
		release.ReleaseDate, err = music.ParseReleaseDate(dateText)
		if err != nil {
			return nil, fmt.Errorf("release %s has bad date %q: %w", release.TrackID, dateText, ErrCacheCorrupt)
		}
		release.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAtText)
		if err != nil {
			return nil, fmt.Errorf("release %s has bad fetched_at %q: %w", release.TrackID, fetchedAtText, ErrCacheCorrupt)
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached releases: %w", err)
	}
	return releases, nil
}

// InvalidateArtist removes every cached release for one artist along with
// its fetch stamp. The returned count covers release rows only.
func (s *Store) InvalidateArtist(ctx context.Context, artistID string) (int64, error) {
	if _, err := s.execWithRetry(ctx, `DELETE FROM artist_fetches WHERE artist_id = ?`, artistID); err != nil {
		return 0, fmt.Errorf("invalidate artist fetch stamp: %w", err)
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM releases_cache WHERE artist_id = ?`, artistID)
	if err != nil {
		return 0, fmt.Errorf("invalidate artist cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// TouchArtistFetch records that a full catalog fetch for the artist finished
// at the given time. The stamp lets an empty result set count as a hit
// instead of being refetched every run.
func (s *Store) TouchArtistFetch(ctx context.Context, artistID string, fetchedAt time.Time) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO artist_fetches (artist_id, fetched_at) VALUES (?, ?)
		 ON CONFLICT(artist_id) DO UPDATE SET fetched_at = excluded.fetched_at`,
		artistID, fetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("touch artist fetch: %w", err)
	}
	return nil
}

// ArtistFetchStamp returns when the artist's catalog was last fully fetched.
func (s *Store) ArtistFetchStamp(ctx context.Context, artistID string) (time.Time, bool, error) {
	ctx = ensureContext(ctx)
	var stampText string
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM artist_fetches WHERE artist_id = ?`, artistID,
	).Scan(&stampText)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query artist fetch stamp: %w", err)
	}
	stamp, err := time.Parse(time.RFC3339Nano, stampText)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("artist %s has bad fetch stamp %q: %w", artistID, stampText, ErrCacheCorrupt)
	}
	return stamp, true, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
