package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSpotify()
	c.normalizeTracker()
	c.normalizeCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSpotify() {
	// Environment credentials override file values.
	if env := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_ID")); env != "" {
		c.Spotify.ClientID = env
	}
	if env := strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_SECRET")); env != "" {
		c.Spotify.ClientSecret = env
	}
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	if strings.TrimSpace(c.Spotify.BaseURL) == "" {
		c.Spotify.BaseURL = defaultSpotifyBaseURL
	}
	c.Spotify.BaseURL = strings.TrimRight(strings.TrimSpace(c.Spotify.BaseURL), "/")
	if strings.TrimSpace(c.Spotify.TokenURL) == "" {
		c.Spotify.TokenURL = defaultSpotifyTokenURL
	}
	c.Spotify.TokenURL = strings.TrimSpace(c.Spotify.TokenURL)
	c.Spotify.Market = strings.ToUpper(strings.TrimSpace(c.Spotify.Market))
}

func (c *Config) normalizeTracker() {
	if c.Tracker.LookbackDays <= 0 {
		c.Tracker.LookbackDays = defaultLookbackDays
	}
	if c.Tracker.Workers <= 0 {
		c.Tracker.Workers = defaultWorkers
	}
	if c.Tracker.MaxRetries <= 0 {
		c.Tracker.MaxRetries = defaultMaxRetries
	}
	if c.Tracker.RetryBaseDelay <= 0 {
		c.Tracker.RetryBaseDelay = defaultRetryBaseDelay
	}
	if c.Tracker.CallDeadline <= 0 {
		c.Tracker.CallDeadline = defaultCallDeadline
	}
	if c.Tracker.RequestsPerSec <= 0 {
		c.Tracker.RequestsPerSec = defaultRequestsPerSec
	}
	if c.Tracker.RequestBurst <= 0 {
		c.Tracker.RequestBurst = defaultRequestBurst
	}
	if len(c.Tracker.NoiseKeywords) == 0 {
		c.Tracker.NoiseKeywords = append([]string(nil), defaultNoiseKeywords...)
	}
	keywords := make([]string, 0, len(c.Tracker.NoiseKeywords))
	for _, keyword := range c.Tracker.NoiseKeywords {
		if trimmed := strings.ToLower(strings.TrimSpace(keyword)); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	c.Tracker.NoiseKeywords = keywords
}

func (c *Config) normalizeCache() {
	if c.Cache.FreshAgeDays <= 0 {
		c.Cache.FreshAgeDays = defaultFreshAgeDays
	}
	if c.Cache.FreshTTLHours <= 0 {
		c.Cache.FreshTTLHours = defaultFreshTTLHours
	}
	if c.Cache.RecentAgeDays <= 0 {
		c.Cache.RecentAgeDays = defaultRecentAgeDays
	}
	if c.Cache.RecentTTLHours <= 0 {
		c.Cache.RecentTTLHours = defaultRecentTTLHours
	}
	if c.Cache.ArchiveTTLHours <= 0 {
		c.Cache.ArchiveTTLHours = defaultArchiveTTLHours
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}
