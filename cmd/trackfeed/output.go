package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"trackfeed/internal/music"
	"trackfeed/internal/tracker"
)

// writeResult renders a discovery result in the requested format. "auto"
// picks a table on a terminal and TSV when piped.
func writeResult(w io.Writer, result *tracker.Result, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto":
		if stdoutIsTerminal() {
			return writeReleaseTable(w, result)
		}
		return writeReleaseRows(w, result, '\t')
	case "table":
		return writeReleaseTable(w, result)
	case "tsv":
		return writeReleaseRows(w, result, '\t')
	case "csv":
		return writeReleaseRows(w, result, ',')
	case "json":
		return writeReleaseJSON(w, result)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// orderedReleases flattens the per-artist map sorted by artist name, so
// output is stable run to run.
func orderedReleases(result *tracker.Result) []music.Release {
	artistIDs := make([]string, 0, len(result.ReleasesByArtist))
	for artistID := range result.ReleasesByArtist {
		artistIDs = append(artistIDs, artistID)
	}
	sort.Slice(artistIDs, func(i, j int) bool {
		a := result.ReleasesByArtist[artistIDs[i]]
		b := result.ReleasesByArtist[artistIDs[j]]
		nameOf := func(releases []music.Release, id string) string {
			if len(releases) > 0 && releases[0].ArtistName != "" {
				return releases[0].ArtistName
			}
			return id
		}
		return strings.ToLower(nameOf(a, artistIDs[i])) < strings.ToLower(nameOf(b, artistIDs[j]))
	})

	var flat []music.Release
	for _, artistID := range artistIDs {
		flat = append(flat, result.ReleasesByArtist[artistID]...)
	}
	return flat
}

func releaseRow(release music.Release) []string {
	name := release.ArtistName
	if name == "" {
		name = release.ArtistID
	}
	return []string{
		name,
		release.TrackName,
		release.AlbumName,
		string(release.AlbumType),
		release.ReleaseDate.Format("2006-01-02"),
		strconv.Itoa(release.Popularity),
	}
}

func writeReleaseTable(w io.Writer, result *tracker.Result) error {
	releases := orderedReleases(result)
	if len(releases) == 0 {
		fmt.Fprintln(w, "No new releases in the window.")
	} else {
		rows := make([][]string, 0, len(releases))
		for _, release := range releases {
			rows = append(rows, releaseRow(release))
		}
		fmt.Fprintln(w, renderTable(releaseColumns, rows))
	}
	return writeSummaryFooter(w, result)
}

func writeSummaryFooter(w io.Writer, result *tracker.Result) error {
	fmt.Fprintf(w, "%d releases across %d artists", result.Releases(), len(result.ReleasesByArtist))
	if total := totalCalls(result); total > 0 {
		fmt.Fprintf(w, ", %d API calls", total)
	} else {
		fmt.Fprint(w, ", served from cache")
	}
	fmt.Fprintln(w)
	if len(result.Missing) > 0 {
		fmt.Fprintf(w, "Failed artists (%d): %s\n", len(result.Missing), strings.Join(result.Missing, ", "))
	}
	return nil
}

func writeReleaseRows(w io.Writer, result *tracker.Result, separator rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = separator
	if err := writer.Write(columnTitles(releaseColumns)); err != nil {
		return err
	}
	for _, release := range orderedReleases(result) {
		if err := writer.Write(releaseRow(release)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeReleaseJSON(w io.Writer, result *tracker.Result) error {
	type jsonRelease struct {
		ArtistID    string `json:"artist_id"`
		ArtistName  string `json:"artist_name"`
		AlbumID     string `json:"album_id"`
		TrackID     string `json:"track_id"`
		ISRC        string `json:"isrc,omitempty"`
		ReleaseDate string `json:"release_date"`
		AlbumName   string `json:"album_name"`
		TrackName   string `json:"track_name"`
		AlbumType   string `json:"album_type"`
		Popularity  int    `json:"popularity"`
		URL         string `json:"url,omitempty"`
	}
	payload := struct {
		Releases   []jsonRelease    `json:"releases"`
		Missing    []string         `json:"missing_artists"`
		CallCounts map[string]int64 `json:"api_calls"`
		RunID      string           `json:"run_id,omitempty"`
	}{
		Missing:    result.Missing,
		CallCounts: result.CallCounts,
		RunID:      result.RunID,
	}
	for _, release := range orderedReleases(result) {
		payload.Releases = append(payload.Releases, jsonRelease{
			ArtistID:    release.ArtistID,
			ArtistName:  release.ArtistName,
			AlbumID:     release.AlbumID,
			TrackID:     release.TrackID,
			ISRC:        release.ISRC,
			ReleaseDate: release.ReleaseDate.Format("2006-01-02"),
			AlbumName:   release.AlbumName,
			TrackName:   release.TrackName,
			AlbumType:   string(release.AlbumType),
			Popularity:  release.Popularity,
			URL:         release.URL,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func totalCalls(result *tracker.Result) int64 {
	var total int64
	for _, n := range result.CallCounts {
		total += n
	}
	return total
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
