package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSpotify(); err != nil {
		return err
	}
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSpotify() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/trackfeed/config.toml"
		}
		return fmt.Errorf("spotify credentials are required. Set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET env vars or edit %s (create with 'trackfeed config init')", defaultPath)
	}
	if c.Spotify.BaseURL == "" {
		return errors.New("spotify.base_url must be set")
	}
	if c.Spotify.TokenURL == "" {
		return errors.New("spotify.token_url must be set")
	}
	return nil
}

func (c *Config) validateTracker() error {
	if c.Tracker.Workers > 64 {
		return errors.New("tracker.workers must be 64 or fewer")
	}
	if c.Tracker.MaxPerArtist < 0 {
		return errors.New("tracker.max_per_artist must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.FreshAgeDays >= c.Cache.RecentAgeDays {
		return errors.New("cache.fresh_age_days must be less than cache.recent_age_days")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
