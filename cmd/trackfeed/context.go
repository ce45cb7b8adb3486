package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"trackfeed/internal/config"
	"trackfeed/internal/fetcher"
	"trackfeed/internal/importer"
	"trackfeed/internal/isrc"
	"trackfeed/internal/logging"
	"trackfeed/internal/noise"
	"trackfeed/internal/releasecache"
	"trackfeed/internal/retry"
	"trackfeed/internal/spotify"
	"trackfeed/internal/store"
	"trackfeed/internal/tracker"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// engine bundles the wired components behind one Close.
type engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	tracker  *tracker.Tracker
	importer *importer.Importer
}

func (e *engine) Close() error {
	return e.store.Close()
}

// buildEngine wires the full pipeline from config: store, API client, retry
// policy, resolver, fetcher, cache, tracker, importer.
func (c *commandContext) buildEngine() (*engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	client, err := spotify.New(
		cfg.Spotify.ClientID,
		cfg.Spotify.ClientSecret,
		cfg.Spotify.BaseURL,
		cfg.Spotify.TokenURL,
		cfg.Spotify.Market,
		spotify.WithLogger(logger),
	)
	if err != nil {
		st.Close()
		return nil, err
	}

	policy := retry.NewPolicy(retry.Options{
		MaxAttempts:    cfg.Tracker.MaxRetries,
		BaseDelay:      time.Duration(cfg.Tracker.RetryBaseDelay) * time.Second,
		CallDeadline:   time.Duration(cfg.Tracker.CallDeadline) * time.Second,
		RequestsPerSec: cfg.Tracker.RequestsPerSec,
		Burst:          cfg.Tracker.RequestBurst,
		Logger:         logger,
	})
	resolver := isrc.NewResolver(isrc.NewDurableCache(st), client, policy, logger)
	filter := noise.NewFilter(cfg.Tracker.NoiseKeywords)
	fetch := fetcher.New(client, policy, resolver, filter, logger)
	cache := releasecache.New(st, releasecache.NewTTLPolicy(cfg.Cache), logger)

	return &engine{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		tracker:  tracker.New(st, cache, fetch, policy, cfg.Tracker.Workers, logger),
		importer: importer.New(st, client, policy, logger),
	}, nil
}

// withEngine builds the engine, runs fn, and tears it down.
func (c *commandContext) withEngine(fn func(*engine) error) error {
	eng, err := c.buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()
	return fn(eng)
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "trackfeed.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}
