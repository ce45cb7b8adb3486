package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trackfeed/internal/logging"
	"trackfeed/internal/music"
)

const pageLimit = 50

// Client accesses the Spotify Web API using the client-credentials flow.
type Client struct {
	baseURL    string
	market     string
	httpClient *http.Client
	logger     *slog.Logger
	auth       *tokenSource
}

var _ Catalog = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
			c.auth.httpClient = client
		}
	}
}

// WithLogger attaches a logger; a nil base resolves to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "spotify")
	}
}

// New creates a Spotify client. Market may be empty.
func New(clientID, clientSecret, baseURL, tokenURL, market string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify credentials required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("spotify base url required")
	}
	tokenURL = strings.TrimSpace(tokenURL)
	if tokenURL == "" {
		return nil, errors.New("spotify token url required")
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		market:     strings.TrimSpace(market),
		httpClient: httpClient,
		logger:     logging.NewNop(),
		auth: &tokenSource{
			clientID:     clientID,
			clientSecret: clientSecret,
			tokenURL:     tokenURL,
			httpClient:   httpClient,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ArtistAlbums lists one page of an artist's catalog for a single type.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string, albumType music.AlbumType, offset int) (AlbumPage, error) {
	artistID = strings.TrimSpace(artistID)
	if artistID == "" {
		return AlbumPage{}, fmt.Errorf("artist id must not be empty: %w", ErrPermanent)
	}

	params := url.Values{}
	params.Set("include_groups", string(albumType))
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("offset", strconv.Itoa(offset))
	if c.market != "" {
		params.Set("market", c.market)
	}

	var payload albumsResponse
	if err := c.getJSON(ctx, "artist_albums", fmt.Sprintf("/artists/%s/albums", artistID), params, &payload); err != nil {
		return AlbumPage{}, err
	}

	entries := make([]music.CatalogEntry, 0, len(payload.Items))
	for _, item := range payload.Items {
		date, err := music.ParseReleaseDate(item.ReleaseDate)
		if err != nil {
			c.logger.Warn("skipping entry with unparseable release date",
				logging.String(logging.FieldAlbumID, item.ID),
				logging.Error(err))
			continue
		}
		entries = append(entries, music.CatalogEntry{
			ID:          item.ID,
			Name:        item.Name,
			Type:        music.AlbumType(item.AlbumType),
			ArtistID:    artistID,
			ReleaseDate: date,
		})
	}
	return AlbumPage{
		Entries:    entries,
		Offset:     payload.Offset,
		NextOffset: payload.Offset + len(payload.Items),
		HasNext:    payload.Next != "",
	}, nil
}

// AlbumTracks lists one page of an album's track listing.
func (c *Client) AlbumTracks(ctx context.Context, albumID string, offset int) (TrackPage, error) {
	albumID = strings.TrimSpace(albumID)
	if albumID == "" {
		return TrackPage{}, fmt.Errorf("album id must not be empty: %w", ErrPermanent)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("offset", strconv.Itoa(offset))
	if c.market != "" {
		params.Set("market", c.market)
	}

	var payload albumTracksResponse
	if err := c.getJSON(ctx, "album_tracks", fmt.Sprintf("/albums/%s/tracks", albumID), params, &payload); err != nil {
		return TrackPage{}, err
	}

	tracks := make([]music.Track, 0, len(payload.Items))
	for _, item := range payload.Items {
		tracks = append(tracks, music.Track{ID: item.ID, Name: item.Name})
	}
	return TrackPage{Tracks: tracks, Offset: payload.Offset, HasNext: payload.Next != ""}, nil
}

// Track fetches the detail fields for one track.
func (c *Client) Track(ctx context.Context, trackID string) (music.TrackDetail, error) {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return music.TrackDetail{}, fmt.Errorf("track id must not be empty: %w", ErrPermanent)
	}

	params := url.Values{}
	if c.market != "" {
		params.Set("market", c.market)
	}

	var payload fullTrackObject
	if err := c.getJSON(ctx, "track", "/tracks/"+trackID, params, &payload); err != nil {
		return music.TrackDetail{}, err
	}
	return music.TrackDetail{
		ID:         payload.ID,
		Name:       payload.Name,
		ISRC:       payload.ExternalIDs.ISRC,
		Popularity: payload.Popularity,
		URL:        payload.ExternalURLs.Spotify,
	}, nil
}

// EarliestByISRC searches the catalog for every appearance of a recording
// and returns the appearance with the earliest release date.
func (c *Client) EarliestByISRC(ctx context.Context, isrc string) (ISRCHit, error) {
	isrc = strings.TrimSpace(isrc)
	if isrc == "" {
		return ISRCHit{}, fmt.Errorf("isrc must not be empty: %w", ErrPermanent)
	}

	params := url.Values{}
	params.Set("q", "isrc:"+isrc)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(pageLimit))
	if c.market != "" {
		params.Set("market", c.market)
	}

	var payload trackSearchResponse
	if err := c.getJSON(ctx, "search_isrc", "/search", params, &payload); err != nil {
		return ISRCHit{}, err
	}

	hit := ISRCHit{}
	for _, item := range payload.Tracks.Items {
		date, err := music.ParseReleaseDate(item.Album.ReleaseDate)
		if err != nil {
			continue
		}
		if !hit.Found || date.Before(hit.ReleaseDate) {
			hit = ISRCHit{Found: true, ReleaseDate: date, AlbumName: item.Album.Name}
		}
	}
	return hit, nil
}

// Artist resolves an artist by id.
func (c *Client) Artist(ctx context.Context, artistID string) (music.Artist, error) {
	artistID = strings.TrimSpace(artistID)
	if artistID == "" {
		return music.Artist{}, fmt.Errorf("artist id must not be empty: %w", ErrPermanent)
	}

	var payload artistObject
	if err := c.getJSON(ctx, "artist", "/artists/"+artistID, nil, &payload); err != nil {
		return music.Artist{}, err
	}
	return music.Artist{ID: payload.ID, Name: payload.Name}, nil
}

// SearchArtist resolves an artist by name, returning the top match.
func (c *Client) SearchArtist(ctx context.Context, name string) (music.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return music.Artist{}, fmt.Errorf("artist name must not be empty: %w", ErrPermanent)
	}

	params := url.Values{}
	params.Set("q", "artist:"+name)
	params.Set("type", "artist")
	params.Set("limit", "1")
	if c.market != "" {
		params.Set("market", c.market)
	}

	var payload artistSearchResponse
	if err := c.getJSON(ctx, "search_artist", "/search", params, &payload); err != nil {
		return music.Artist{}, err
	}
	if len(payload.Artists.Items) == 0 {
		return music.Artist{}, fmt.Errorf("no artist match for %q: %w", name, ErrPermanent)
	}
	top := payload.Artists.Items[0]
	return music.Artist{ID: top.ID, Name: top.Name}, nil
}

// PlaylistArtists walks a playlist's tracks and collects the unique artists.
func (c *Client) PlaylistArtists(ctx context.Context, playlistID string) ([]music.Artist, error) {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return nil, fmt.Errorf("playlist id must not be empty: %w", ErrPermanent)
	}

	seen := make(map[string]music.Artist)
	var order []string
	offset := 0
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageLimit))
		params.Set("offset", strconv.Itoa(offset))

		var payload playlistTracksResponse
		if err := c.getJSON(ctx, "playlist_tracks", fmt.Sprintf("/playlists/%s/tracks", playlistID), params, &payload); err != nil {
			return nil, err
		}
		for _, item := range payload.Items {
			if item.Track == nil {
				continue
			}
			for _, artist := range item.Track.Artists {
				// Local files carry no artist id.
				if artist.ID == "" {
					continue
				}
				if _, ok := seen[artist.ID]; !ok {
					seen[artist.ID] = music.Artist{ID: artist.ID, Name: artist.Name}
					order = append(order, artist.ID)
				}
			}
		}
		if payload.Next == "" {
			break
		}
		offset += pageLimit
	}

	artists := make([]music.Artist, 0, len(order))
	for _, id := range order {
		artists = append(artists, seen[id])
	}
	return artists, nil
}

// getJSON performs one authenticated GET against the API and decodes the
// response, classifying failures into the error taxonomy.
func (c *Client) getJSON(ctx context.Context, operation, path string, params url.Values, out any) error {
	token, err := c.auth.token(ctx)
	if err != nil {
		return err
	}

	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse spotify url: %w", err)
	}
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s request (latency=%v): %w: %w", operation, latency, ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, resp.Header.Get("Retry-After"), operation)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", operation, ErrTransient, err)
	}
	return nil
}
