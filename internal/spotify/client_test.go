package spotify_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trackfeed/internal/music"
	"trackfeed/internal/spotify"
)

// newTestServer serves a token endpoint at /token and delegates everything
// else to handler.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			if r.Method != http.MethodPost {
				t.Errorf("token request method = %s, want POST", r.Method)
			}
			if _, _, ok := r.BasicAuth(); !ok {
				t.Error("token request missing basic auth")
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", got)
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *spotify.Client {
	t.Helper()
	client, err := spotify.New("id", "secret", server.URL, server.URL+"/token", "US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := spotify.New("", "", "https://example.com", "https://example.com/token", ""); err == nil {
		t.Fatal("expected error when credentials missing")
	}
}

func TestArtistAlbumsParsesPage(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artists/4Z8W4fKeB5YxbusRsiQu0a/albums" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("include_groups"); got != "single" {
			t.Errorf("include_groups = %q, want single", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"next": "https://api.example.com/next",
			"offset": 0,
			"items": [
				{"id":"alb1","name":"New Single","album_type":"single","release_date":"2026-08-01"},
				{"id":"alb2","name":"Old EP","album_type":"single","release_date":"2024"},
				{"id":"alb3","name":"Broken","album_type":"single","release_date":"garbage"}
			]
		}`))
	})
	client := newTestClient(t, server)

	page, err := client.ArtistAlbums(context.Background(), "4Z8W4fKeB5YxbusRsiQu0a", music.AlbumTypeSingle, 0)
	if err != nil {
		t.Fatalf("ArtistAlbums returned error: %v", err)
	}
	if !page.HasNext {
		t.Error("expected HasNext=true")
	}
	if len(page.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (unparseable date skipped)", len(page.Entries))
	}
	if page.NextOffset != 3 {
		t.Errorf("NextOffset = %d, want 3 (dropped item still occupies its slot)", page.NextOffset)
	}
	if got := page.Entries[0].ReleaseDate; !got.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first entry date = %v", got)
	}
	if got := page.Entries[1].ReleaseDate; !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("year-only date = %v, want 2024-01-01", got)
	}
}

func TestTrackDetail(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"trk1","name":"Song Title","popularity":73,
			"external_ids":{"isrc":"USUM72400001"},
			"external_urls":{"spotify":"https://open.spotify.com/track/trk1"}
		}`))
	})
	client := newTestClient(t, server)

	detail, err := client.Track(context.Background(), "trk1")
	if err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if detail.ISRC != "USUM72400001" || detail.Popularity != 73 {
		t.Fatalf("unexpected detail: %#v", detail)
	}
}

func TestEarliestByISRCPicksEarliest(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "isrc:USUM72400001" {
			t.Errorf("q = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracks":{"items":[
			{"album":{"id":"a1","name":"The Album","release_date":"2026-03-10"}},
			{"album":{"id":"a2","name":"The Single","release_date":"2025-11-02"}}
		]}}`))
	})
	client := newTestClient(t, server)

	hit, err := client.EarliestByISRC(context.Background(), "USUM72400001")
	if err != nil {
		t.Fatalf("EarliestByISRC returned error: %v", err)
	}
	if !hit.Found {
		t.Fatal("expected a hit")
	}
	if hit.AlbumName != "The Single" {
		t.Errorf("AlbumName = %q, want The Single", hit.AlbumName)
	}
}

func TestErrorClassification(t *testing.T) {
	var status atomic.Int64
	var retryAfter atomic.Int64
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if v := retryAfter.Load(); v > 0 {
			w.Header().Set("Retry-After", "7")
		}
		w.WriteHeader(int(status.Load()))
	})
	client := newTestClient(t, server)

	status.Store(http.StatusNotFound)
	_, err := client.Artist(context.Background(), "bogus-artist-id-000000")
	if !errors.Is(err, spotify.ErrPermanent) {
		t.Errorf("404 should classify permanent, got %v", err)
	}

	status.Store(http.StatusBadGateway)
	_, err = client.Artist(context.Background(), "bogus-artist-id-000000")
	if !errors.Is(err, spotify.ErrTransient) {
		t.Errorf("502 should classify transient, got %v", err)
	}

	status.Store(http.StatusTooManyRequests)
	retryAfter.Store(7)
	_, err = client.Artist(context.Background(), "bogus-artist-id-000000")
	if !errors.Is(err, spotify.ErrRateLimited) {
		t.Fatalf("429 should classify rate limited, got %v", err)
	}
	delay, ok := spotify.RetryAfter(err)
	if !ok || delay != 7*time.Second {
		t.Errorf("RetryAfter = %v, %v; want 7s, true", delay, ok)
	}
}

func TestPlaylistArtistsDedupesAcrossPages(t *testing.T) {
	var calls atomic.Int64
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"next":"more","offset":0,"items":[
				{"track":{"artists":[{"id":"art1","name":"First"},{"id":"art2","name":"Second"}]}},
				{"track":null}
			]}`))
			return
		}
		_, _ = w.Write([]byte(`{"next":"","offset":50,"items":[
			{"track":{"artists":[{"id":"art1","name":"First"},{"id":"","name":"Local File"}]}}
		]}`))
	})
	client := newTestClient(t, server)

	artists, err := client.PlaylistArtists(context.Background(), "playlist1")
	if err != nil {
		t.Fatalf("PlaylistArtists returned error: %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("artists = %d, want 2", len(artists))
	}
	if artists[0].ID != "art1" || artists[1].ID != "art2" {
		t.Errorf("unexpected order: %#v", artists)
	}
}

func TestSearchArtistNoMatchIsPermanent(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"artists":{"items":[]}}`))
	})
	client := newTestClient(t, server)

	_, err := client.SearchArtist(context.Background(), "Unknown Band")
	if !errors.Is(err, spotify.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
