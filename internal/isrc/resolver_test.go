package isrc_test

import (
	"context"
	"testing"
	"time"

	"trackfeed/internal/isrc"
	"trackfeed/internal/spotify"
	"trackfeed/internal/testsupport"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed.UTC()
}

func TestResolveWithoutISRCPassesThrough(t *testing.T) {
	catalog := testsupport.NewFakeCatalog()
	resolver := isrc.NewResolver(isrc.NewMemoryCache(), catalog, testsupport.NewPolicy(), nil)

	res, err := resolver.Resolve(context.Background(), "", date("2026-08-01"), "The Single")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.ReleaseDate.Equal(date("2026-08-01")) || res.AlbumName != "The Single" {
		t.Fatalf("unexpected resolution: %#v", res)
	}
	if catalog.CallCount("search_isrc") != 0 {
		t.Error("no upstream call expected without an ISRC")
	}
}

func TestResolveUncachedLooksUpEarliest(t *testing.T) {
	catalog := testsupport.NewFakeCatalog()
	catalog.ISRCHits["USUM72400001"] = spotify.ISRCHit{
		Found:       true,
		ReleaseDate: date("2025-11-02"),
		AlbumName:   "The Single",
	}
	resolver := isrc.NewResolver(isrc.NewMemoryCache(), catalog, testsupport.NewPolicy(), nil)

	// Observed on the album, but the single came first.
	res, err := resolver.Resolve(context.Background(), "USUM72400001", date("2026-03-10"), "The Album")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.ReleaseDate.Equal(date("2025-11-02")) || res.AlbumName != "The Single" {
		t.Fatalf("expected the single's date and name, got %#v", res)
	}
	if catalog.CallCount("search_isrc") != 1 {
		t.Errorf("search_isrc calls = %d, want 1", catalog.CallCount("search_isrc"))
	}
}

func TestResolveCachedSkipsUpstream(t *testing.T) {
	catalog := testsupport.NewFakeCatalog()
	catalog.ISRCHits["USUM72400001"] = spotify.ISRCHit{
		Found:       true,
		ReleaseDate: date("2025-11-02"),
		AlbumName:   "The Single",
	}
	resolver := isrc.NewResolver(isrc.NewMemoryCache(), catalog, testsupport.NewPolicy(), nil)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, "USUM72400001", date("2026-03-10"), "The Album"); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	res, err := resolver.Resolve(ctx, "USUM72400001", date("2026-05-01"), "Compilation Vol. 3")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if !res.ReleaseDate.Equal(date("2025-11-02")) || res.AlbumName != "The Single" {
		t.Fatalf("cached resolution should be stable, got %#v", res)
	}
	if catalog.CallCount("search_isrc") != 1 {
		t.Errorf("search_isrc calls = %d, want 1 (second resolve cached)", catalog.CallCount("search_isrc"))
	}
}

func TestResolveObservedEarlierUpdatesCache(t *testing.T) {
	catalog := testsupport.NewFakeCatalog()
	cache := isrc.NewMemoryCache()
	resolver := isrc.NewResolver(cache, catalog, testsupport.NewPolicy(), nil)
	ctx := context.Background()

	// Seed without an upstream hit: observed value becomes the entry.
	if _, err := resolver.Resolve(ctx, "USUM72400002", date("2026-04-01"), "Reissue"); err != nil {
		t.Fatalf("seed Resolve failed: %v", err)
	}

	// A strictly earlier observation replaces the cached entry.
	res, err := resolver.Resolve(ctx, "USUM72400002", date("2026-01-15"), "Original EP")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.ReleaseDate.Equal(date("2026-01-15")) || res.AlbumName != "Original EP" {
		t.Fatalf("earlier observation should win, got %#v", res)
	}

	// And it sticks for later observers.
	res, err = resolver.Resolve(ctx, "USUM72400002", date("2026-06-01"), "Deluxe")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.ReleaseDate.Equal(date("2026-01-15")) {
		t.Fatalf("cache should retain the earliest date, got %#v", res)
	}
}

func TestResolveDurableCachePersistsAcrossResolvers(t *testing.T) {
	catalog := testsupport.NewFakeCatalog()
	catalog.ISRCHits["USUM72400003"] = spotify.ISRCHit{
		Found:       true,
		ReleaseDate: date("2025-09-09"),
		AlbumName:   "First Pressing",
	}
	s := testsupport.NewStore(t)
	ctx := context.Background()

	first := isrc.NewResolver(isrc.NewDurableCache(s), catalog, testsupport.NewPolicy(), nil)
	if _, err := first.Resolve(ctx, "USUM72400003", date("2026-02-02"), "Later Album"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// A fresh resolver over the same store sees the entry without upstream.
	second := isrc.NewResolver(isrc.NewDurableCache(s), catalog, testsupport.NewPolicy(), nil)
	res, err := second.Resolve(ctx, "USUM72400003", date("2026-02-02"), "Later Album")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.AlbumName != "First Pressing" {
		t.Fatalf("expected durable entry, got %#v", res)
	}
	if got := catalog.CallCount("search_isrc"); got != 1 {
		t.Errorf("search_isrc calls = %d, want 1", got)
	}
}
