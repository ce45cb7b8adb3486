package main

import (
	"strings"
	"testing"
	"time"

	"trackfeed/internal/music"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(historyColumns, [][]string{{"2026-08-27 10:00", "3"}})
	for _, title := range columnTitles(historyColumns) {
		if !strings.Contains(out, title) {
			t.Errorf("output missing column %q:\n%s", title, out)
		}
	}
	if !strings.Contains(out, "2026-08-27 10:00") {
		t.Errorf("output missing row value:\n%s", out)
	}
}

// The csv/tsv writers emit columnTitles(releaseColumns) as the header, so a
// release row must carry exactly one field per column.
func TestReleaseRowMatchesColumns(t *testing.T) {
	row := releaseRow(music.Release{
		TrackID:     "track0000000000000000a",
		ArtistName:  "Alpha Act",
		TrackName:   "Song",
		AlbumName:   "Album",
		AlbumType:   music.AlbumTypeSingle,
		ReleaseDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Popularity:  42,
	})
	if got, want := len(row), len(releaseColumns); got != want {
		t.Fatalf("releaseRow has %d fields, want %d", got, want)
	}
}

func TestRunMapsExitCodes(t *testing.T) {
	if got := run([]string{"--help"}); got != 0 {
		t.Errorf("exit code = %d, want 0", got)
	}
	if got := run([]string{"no-such-command"}); got != 1 {
		t.Errorf("exit code = %d, want 1", got)
	}
}
