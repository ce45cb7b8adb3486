package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trackfeed/internal/music"
)

// ISRCEntry is the permanent earliest-appearance record for one recording.
type ISRCEntry struct {
	ISRC         string
	EarliestDate time.Time
	AlbumName    string
}

// GetISRC looks up the cached earliest appearance for a recording.
func (s *Store) GetISRC(ctx context.Context, isrc string) (ISRCEntry, bool, error) {
	ctx = ensureContext(ctx)
	var dateText, albumName string
	err := s.db.QueryRowContext(ctx,
		`SELECT earliest_date, earliest_album_name FROM isrc_lookup WHERE isrc = ?`,
		isrc).Scan(&dateText, &albumName)
	if errors.Is(err, sql.ErrNoRows) {
		return ISRCEntry{}, false, nil
	}
	if err != nil {
		return ISRCEntry{}, false, fmt.Errorf("query isrc lookup: %w", err)
	}
	date, err := music.ParseReleaseDate(dateText)
	if err != nil {
		return ISRCEntry{}, false, fmt.Errorf("isrc %s has bad date %q: %w", isrc, dateText, ErrCacheCorrupt)
	}
	return ISRCEntry{ISRC: isrc, EarliestDate: date, AlbumName: albumName}, true, nil
}

// PutISRC records the earliest appearance of a recording. Entries are
// immutable once written except when a strictly earlier date is discovered
// later; the conditional upsert makes that rule atomic under concurrent
// writers resolving the same recording.
func (s *Store) PutISRC(ctx context.Context, entry ISRCEntry) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO isrc_lookup (isrc, earliest_date, earliest_album_name, cached_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(isrc) DO UPDATE SET
		     earliest_date = excluded.earliest_date,
		     earliest_album_name = excluded.earliest_album_name
		 WHERE excluded.earliest_date < isrc_lookup.earliest_date`,
		entry.ISRC,
		music.FormatReleaseDate(entry.EarliestDate),
		entry.AlbumName,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert isrc %s: %w", entry.ISRC, err)
	}
	return nil
}
