package fetcher_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trackfeed/internal/config"
	"trackfeed/internal/fetcher"
	"trackfeed/internal/isrc"
	"trackfeed/internal/music"
	"trackfeed/internal/noise"
	"trackfeed/internal/spotify"
	"trackfeed/internal/testsupport"
)

const artistID = "artist00000000000000aa"

var testArtist = music.Artist{ID: artistID, Name: "Test Artist"}

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed.UTC()
}

type harness struct {
	catalog *testsupport.FakeCatalog
	fetcher *fetcher.Fetcher
}

func newHarness() *harness {
	catalog := testsupport.NewFakeCatalog()
	policy := testsupport.NewPolicy()
	resolver := isrc.NewResolver(isrc.NewMemoryCache(), catalog, policy, nil)
	filter := noise.NewFilter(config.Default().Tracker.NoiseKeywords)
	return &harness{
		catalog: catalog,
		fetcher: fetcher.New(catalog, policy, resolver, filter, nil),
	}
}

// addAlbum scripts an entry with one track per name, wiring track details so
// the detail fetch succeeds. Track ids derive from the album id and index.
func (h *harness) addAlbum(albumID, name string, albumType music.AlbumType, date time.Time, trackNames ...string) []string {
	entry := music.CatalogEntry{
		ID:          albumID,
		Name:        name,
		Type:        albumType,
		ArtistID:    artistID,
		ReleaseDate: date,
	}
	var tracks []music.Track
	var trackIDs []string
	for i, trackName := range trackNames {
		trackID := fmt.Sprintf("%s-%03d", albumID, i)
		tracks = append(tracks, music.Track{ID: trackID, Name: trackName})
		h.catalog.Details[trackID] = music.TrackDetail{
			ID:         trackID,
			Name:       trackName,
			Popularity: 50,
			URL:        "https://open.spotify.com/track/" + trackID,
		}
		trackIDs = append(trackIDs, trackID)
	}
	h.catalog.AddAlbum(entry, tracks...)
	return trackIDs
}

func TestFetchArtistSurfacesRecentReleases(t *testing.T) {
	h := newHarness()
	h.addAlbum("album0000000000000000aa", "New Album", music.AlbumTypeAlbum, day("2026-08-01"), "Opener", "Closer")
	h.addAlbum("album0000000000000000ab", "Old Album", music.AlbumTypeAlbum, day("2020-01-01"), "Relic")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("releases = %d, want 2", len(releases))
	}
	for _, release := range releases {
		if release.AlbumName != "New Album" {
			t.Errorf("unexpected release %q from %q", release.TrackName, release.AlbumName)
		}
		if release.ArtistName != "Test Artist" || release.Popularity != 50 {
			t.Errorf("release not filled from detail: %#v", release)
		}
	}
}

func TestFetchArtistScansTypesIndependently(t *testing.T) {
	h := newHarness()
	// Every album page is older than cutoff. The singles are newer and must
	// still be scanned even though the album type stops on its first page.
	h.addAlbum("album0000000000000000aa", "Old Album A", music.AlbumTypeAlbum, day("2019-01-01"), "Old Track A")
	h.addAlbum("album0000000000000000ab", "Old Album B", music.AlbumTypeAlbum, day("2018-01-01"), "Old Track B")
	h.addAlbum("single000000000000000aa", "Fresh Single", music.AlbumTypeSingle, day("2026-08-10"), "Fresh Track")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 1 || releases[0].TrackName != "Fresh Track" {
		t.Fatalf("want only the fresh single, got %#v", releases)
	}
}

func TestFetchArtistEarlyStopSkipsOlderPages(t *testing.T) {
	h := newHarness()
	// PageSize is 2: page one holds the two recent singles, page two holds
	// only old ones. The old page is scanned, then pagination stops without
	// requesting a third page.
	h.addAlbum("single000000000000000aa", "Single A", music.AlbumTypeSingle, day("2026-08-10"), "Track A")
	h.addAlbum("single000000000000000ab", "Single B", music.AlbumTypeSingle, day("2026-07-10"), "Track B")
	h.addAlbum("single000000000000000ac", "Single C", music.AlbumTypeSingle, day("2021-01-01"), "Track C")
	h.addAlbum("single000000000000000ad", "Single D", music.AlbumTypeSingle, day("2020-01-01"), "Track D")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("releases = %d, want 2", len(releases))
	}
	// Two pages of singles plus one empty album page and one empty
	// compilation page.
	if got := h.catalog.CallCount("artist_albums"); got != 4 {
		t.Errorf("artist_albums calls = %d, want 4", got)
	}
}

func TestFetchArtistMixedPageFiltersWithinPage(t *testing.T) {
	h := newHarness()
	// One page mixing a recent and an old entry: the old entry is dropped
	// but the page itself must not trigger an early stop.
	h.addAlbum("single000000000000000aa", "Recent", music.AlbumTypeSingle, day("2026-08-10"), "Recent Track")
	h.addAlbum("single000000000000000ab", "Ancient", music.AlbumTypeSingle, day("2019-01-01"), "Ancient Track")
	h.addAlbum("single000000000000000ac", "Also Recent", music.AlbumTypeSingle, day("2026-07-01"), "Later Track")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("releases = %d, want 2, got %#v", len(releases), releases)
	}
}

func TestFetchArtistDroppedEntryDoesNotShiftPagination(t *testing.T) {
	h := newHarness()
	// The first single occupies an offset slot upstream but is dropped from
	// the returned page. Advancing by the filtered count would re-request
	// its slot and surface Track B twice.
	h.addAlbum("single000000000000000aa", "Broken Date", music.AlbumTypeSingle, time.Time{}, "Lost Track")
	h.addAlbum("single000000000000000ab", "Single B", music.AlbumTypeSingle, day("2026-08-10"), "Track B")
	h.addAlbum("single000000000000000ac", "Single C", music.AlbumTypeSingle, day("2026-07-10"), "Track C")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("releases = %d, want 2, got %#v", len(releases), releases)
	}
	seen := make(map[string]int)
	for _, release := range releases {
		seen[release.TrackID]++
	}
	for trackID, count := range seen {
		if count != 1 {
			t.Errorf("track %s surfaced %d times, want once", trackID, count)
		}
	}
}

func TestFetchArtistContinuesPastFullyDroppedPage(t *testing.T) {
	h := newHarness()
	// PageSize is 2, so the first page comes back with no usable entries
	// while more pages remain. Pagination must reach the single behind it.
	h.addAlbum("single000000000000000aa", "Broken A", music.AlbumTypeSingle, time.Time{}, "Lost A")
	h.addAlbum("single000000000000000ab", "Broken B", music.AlbumTypeSingle, time.Time{}, "Lost B")
	h.addAlbum("single000000000000000ac", "Single C", music.AlbumTypeSingle, day("2026-08-10"), "Track C")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 1 || releases[0].TrackName != "Track C" {
		t.Fatalf("want only Track C, got %#v", releases)
	}
}

func TestFetchArtistDeduplicatesByISRC(t *testing.T) {
	h := newHarness()
	singleTracks := h.addAlbum("single000000000000000aa", "The Single", music.AlbumTypeSingle, day("2026-07-01"), "Hit Song")
	albumTracks := h.addAlbum("album0000000000000000aa", "The Album", music.AlbumTypeAlbum, day("2026-08-15"), "Hit Song")

	// Same recording on both entries.
	for _, trackID := range append(singleTracks, albumTracks...) {
		detail := h.catalog.Details[trackID]
		detail.ISRC = "USUM72400010"
		h.catalog.Details[trackID] = detail
	}

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("releases = %d, want 1 after dedup", len(releases))
	}
	got := releases[0]
	if !got.ReleaseDate.Equal(day("2026-07-01")) || got.AlbumName != "The Single" {
		t.Fatalf("dedup should keep the earliest appearance, got %#v", got)
	}
}

func TestFetchArtistDropsResolvedRereleases(t *testing.T) {
	h := newHarness()
	tracks := h.addAlbum("album0000000000000000aa", "Greatest Hits", music.AlbumTypeAlbum, day("2026-08-01"), "Old Favorite")
	detail := h.catalog.Details[tracks[0]]
	detail.ISRC = "USUM71800001"
	h.catalog.Details[tracks[0]] = detail
	h.catalog.ISRCHits["USUM71800001"] = spotify.ISRCHit{
		Found:       true,
		ReleaseDate: day("2018-03-03"),
		AlbumName:   "Original Album",
	}

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 0 {
		t.Fatalf("a recording first released in 2018 is not new, got %#v", releases)
	}
}

func TestFetchArtistExcludesNoise(t *testing.T) {
	h := newHarness()
	h.addAlbum("album0000000000000000aa", "Concert Album", music.AlbumTypeAlbum, day("2026-08-01"),
		"Song Title - Live", "Song Title")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 1 || releases[0].TrackName != "Song Title" {
		t.Fatalf("want only the studio track, got %#v", releases)
	}
}

func TestFetchArtistSkipsTrackOnDetailFailure(t *testing.T) {
	h := newHarness()
	tracks := h.addAlbum("album0000000000000000aa", "New Album", music.AlbumTypeAlbum, day("2026-08-01"), "Good", "Broken")
	h.catalog.InjectError("track", tracks[1], fmt.Errorf("track gone: %w", spotify.ErrPermanent), 0)

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist should tolerate a broken track: %v", err)
	}
	if len(releases) != 1 || releases[0].TrackName != "Good" {
		t.Fatalf("want the healthy track only, got %#v", releases)
	}
}

func TestFetchArtistFailsOnPermanentListingError(t *testing.T) {
	h := newHarness()
	h.catalog.InjectError("artist_albums", artistID, fmt.Errorf("no such artist: %w", spotify.ErrPermanent), 0)

	if _, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01")); err == nil {
		t.Fatal("want error when the artist listing fails permanently")
	}
}

func TestFetchArtistRetriesTransientListing(t *testing.T) {
	h := newHarness()
	h.addAlbum("single000000000000000aa", "Fresh Single", music.AlbumTypeSingle, day("2026-08-10"), "Fresh Track")
	h.catalog.InjectError("artist_albums", artistID, fmt.Errorf("upstream 503: %w", spotify.ErrTransient), 1)

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist should retry past a transient failure: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("releases = %d, want 1", len(releases))
	}
}

func TestFetchArtistOrderIsDeterministic(t *testing.T) {
	h := newHarness()
	h.addAlbum("album0000000000000000aa", "August Album", music.AlbumTypeAlbum, day("2026-08-01"), "A Side", "B Side")
	h.addAlbum("single000000000000000aa", "July Single", music.AlbumTypeSingle, day("2026-07-01"), "Lone Track")

	releases, err := h.fetcher.FetchArtist(context.Background(), testArtist, day("2026-06-01"))
	if err != nil {
		t.Fatalf("FetchArtist failed: %v", err)
	}
	if len(releases) != 3 {
		t.Fatalf("releases = %d, want 3", len(releases))
	}
	if !releases[0].ReleaseDate.Equal(day("2026-08-01")) || releases[2].TrackName != "Lone Track" {
		t.Fatalf("want newest first, got %#v", releases)
	}
	if releases[0].TrackID > releases[1].TrackID {
		t.Errorf("equal dates must order by track id: %q then %q", releases[0].TrackID, releases[1].TrackID)
	}
}
