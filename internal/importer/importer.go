// Package importer brings artists into the tracked set from text files,
// playlists, and JSON backups. Inputs accept raw catalog ids, spotify: URIs,
// open.spotify.com links, or plain names resolved by search.
package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"trackfeed/internal/logging"
	"trackfeed/internal/music"
	"trackfeed/internal/retry"
	"trackfeed/internal/spotify"
	"trackfeed/internal/store"
)

// Summary reports the outcome of one import.
type Summary struct {
	Added   int
	Skipped int
	// Failed holds the input lines that could not be resolved.
	Failed []string
}

// Importer resolves artist references and records them in the store.
type Importer struct {
	store   *store.Store
	catalog spotify.Catalog
	policy  *retry.Policy
	logger  *slog.Logger
}

func New(s *store.Store, catalog spotify.Catalog, policy *retry.Policy, logger *slog.Logger) *Importer {
	return &Importer{
		store:   s,
		catalog: catalog,
		policy:  policy,
		logger:  logging.NewComponentLogger(logger, "importer"),
	}
}

// ImportText reads one artist reference per line. Blank lines and lines
// starting with # are skipped. Lines that fail to resolve are reported in
// the summary and do not abort the import.
func (imp *Importer) ImportText(ctx context.Context, r io.Reader) (Summary, error) {
	var summary Summary
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		artist, err := imp.resolveRef(ctx, line)
		if err != nil {
			imp.logger.Warn("could not resolve artist reference",
				logging.String("ref", line),
				logging.Error(err))
			summary.Failed = append(summary.Failed, line)
			continue
		}
		added, err := imp.store.AddArtist(ctx, artist)
		if err != nil {
			return summary, err
		}
		if added {
			summary.Added++
		} else {
			summary.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read artist list: %w", err)
	}
	return summary, nil
}

// ImportPlaylist adds every artist appearing on a playlist. The reference
// may be a raw id, a spotify:playlist: URI, or an open.spotify.com link.
func (imp *Importer) ImportPlaylist(ctx context.Context, ref string) (Summary, error) {
	playlistID, ok := ParsePlaylistRef(ref)
	if !ok {
		return Summary{}, fmt.Errorf("unrecognized playlist reference %q", ref)
	}

	var artists []music.Artist
	err := imp.policy.Execute(ctx, "playlist_artists", func(ctx context.Context) error {
		var callErr error
		artists, callErr = imp.catalog.PlaylistArtists(ctx, playlistID)
		return callErr
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list playlist artists: %w", err)
	}

	added, skipped, err := imp.store.AddArtistsBatch(ctx, artists)
	if err != nil {
		return Summary{}, err
	}
	imp.logger.Info("playlist imported",
		logging.String("playlist_id", playlistID),
		logging.Int("added", added),
		logging.Int("skipped", skipped))
	return Summary{Added: added, Skipped: skipped}, nil
}

// artistRecord is the JSON backup shape.
type artistRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExportJSON writes the tracked artists as a JSON array, one object per
// artist, suitable for re-import.
func (imp *Importer) ExportJSON(ctx context.Context, w io.Writer) error {
	artists, err := imp.store.ListArtists(ctx)
	if err != nil {
		return err
	}
	records := make([]artistRecord, 0, len(artists))
	for _, artist := range artists {
		records = append(records, artistRecord{ID: artist.ID, Name: artist.Name})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// ImportJSON restores artists from a backup written by ExportJSON. Records
// with invalid ids are reported as failures.
func (imp *Importer) ImportJSON(ctx context.Context, r io.Reader) (Summary, error) {
	var records []artistRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return Summary{}, fmt.Errorf("decode artist backup: %w", err)
	}
	var summary Summary
	for _, record := range records {
		if !music.ValidID(record.ID) {
			summary.Failed = append(summary.Failed, record.ID)
			continue
		}
		added, err := imp.store.AddArtist(ctx, music.Artist{ID: record.ID, Name: record.Name})
		if err != nil {
			return summary, err
		}
		if added {
			summary.Added++
		} else {
			summary.Skipped++
		}
	}
	return summary, nil
}

// resolveRef turns one input line into an artist. Id-shaped references are
// looked up to capture the display name; anything else is treated as a name
// to search for.
func (imp *Importer) resolveRef(ctx context.Context, ref string) (music.Artist, error) {
	if id, ok := ParseArtistRef(ref); ok {
		var artist music.Artist
		err := imp.policy.Execute(ctx, "artist", func(ctx context.Context) error {
			var callErr error
			artist, callErr = imp.catalog.Artist(ctx, id)
			return callErr
		})
		return artist, err
	}

	var artist music.Artist
	err := imp.policy.Execute(ctx, "search_artist", func(ctx context.Context) error {
		var callErr error
		artist, callErr = imp.catalog.SearchArtist(ctx, ref)
		return callErr
	})
	return artist, err
}

// ParseArtistRef extracts a catalog id from a raw id, spotify:artist: URI,
// or open.spotify.com artist link.
func ParseArtistRef(ref string) (string, bool) {
	return parseRef(ref, "artist")
}

// ParsePlaylistRef extracts a catalog id from a raw id, spotify:playlist:
// URI, or open.spotify.com playlist link.
func ParsePlaylistRef(ref string) (string, bool) {
	return parseRef(ref, "playlist")
}

func parseRef(ref, kind string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if id, found := strings.CutPrefix(ref, "spotify:"+kind+":"); found {
		if music.ValidID(id) {
			return id, true
		}
		return "", false
	}
	for _, prefix := range []string{"https://open.spotify.com/" + kind + "/", "http://open.spotify.com/" + kind + "/"} {
		if rest, found := strings.CutPrefix(ref, prefix); found {
			id := rest
			if i := strings.IndexAny(id, "?#"); i >= 0 {
				id = id[:i]
			}
			if music.ValidID(id) {
				return id, true
			}
			return "", false
		}
	}
	if music.ValidID(ref) {
		return ref, true
	}
	return "", false
}
