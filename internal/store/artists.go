package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trackfeed/internal/music"
)

// AddArtist stores a tracked artist. Returns false when the artist is
// already present.
func (s *Store) AddArtist(ctx context.Context, artist music.Artist) (bool, error) {
	if !music.ValidID(artist.ID) {
		return false, fmt.Errorf("artist id %q is not a valid catalog id", artist.ID)
	}
	if artist.Name == "" {
		return false, errors.New("artist name must not be empty")
	}
	addedAt := artist.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	res, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO artists (spotify_id, name, added_at) VALUES (?, ?, ?)`,
		artist.ID, artist.Name, addedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("insert artist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AddArtistsBatch stores several artists, returning added and skipped counts.
func (s *Store) AddArtistsBatch(ctx context.Context, artists []music.Artist) (added, skipped int, err error) {
	for _, artist := range artists {
		ok, err := s.AddArtist(ctx, artist)
		if err != nil {
			return added, skipped, err
		}
		if ok {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped, nil
}

// ListArtists returns all tracked artists ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]music.Artist, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT spotify_id, name, added_at FROM artists ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("query artists: %w", err)
	}
	defer rows.Close()

	var artists []music.Artist
	for rows.Next() {
		var artist music.Artist
		var addedAtText string
		if err := rows.Scan(&artist.ID, &artist.Name, &addedAtText); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, addedAtText); parseErr == nil {
			artist.AddedAt = parsed
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return artists, nil
}

// ArtistIDs returns just the catalog ids of all tracked artists.
func (s *Store) ArtistIDs(ctx context.Context) ([]string, error) {
	artists, err := s.ListArtists(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(artists))
	for _, artist := range artists {
		ids = append(ids, artist.ID)
	}
	return ids, nil
}

// GetArtist fetches one tracked artist by catalog id.
func (s *Store) GetArtist(ctx context.Context, artistID string) (music.Artist, bool, error) {
	ctx = ensureContext(ctx)
	var artist music.Artist
	var addedAtText string
	err := s.db.QueryRowContext(ctx,
		`SELECT spotify_id, name, added_at FROM artists WHERE spotify_id = ?`,
		artistID).Scan(&artist.ID, &artist.Name, &addedAtText)
	if errors.Is(err, sql.ErrNoRows) {
		return music.Artist{}, false, nil
	}
	if err != nil {
		return music.Artist{}, false, fmt.Errorf("query artist: %w", err)
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, addedAtText); parseErr == nil {
		artist.AddedAt = parsed
	}
	return artist, true, nil
}

// RemoveArtist deletes a tracked artist by catalog id. Returns false when no
// such artist exists.
func (s *Store) RemoveArtist(ctx context.Context, artistID string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM artists WHERE spotify_id = ?`, artistID)
	if err != nil {
		return false, fmt.Errorf("delete artist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ArtistCount returns the number of tracked artists.
func (s *Store) ArtistCount(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM artists`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count artists: %w", err)
	}
	return count, nil
}
