// Package tracker coordinates discovery runs: a bounded worker pool walks
// the tracked artists, serving fresh cache entries without upstream traffic
// and fetching the rest through the shared rate limit. One artist's failure
// never aborts the batch.
package tracker

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"trackfeed/internal/fetcher"
	"trackfeed/internal/logging"
	"trackfeed/internal/music"
	"trackfeed/internal/releasecache"
	"trackfeed/internal/retry"
	"trackfeed/internal/store"
)

// Options tunes one Discover run.
type Options struct {
	// ForceRefresh bypasses TTL checks and refetches every artist.
	ForceRefresh bool
	// MaxPerArtist caps each artist's list by popularity. Zero means no cap.
	MaxPerArtist int
	// Workers overrides the configured pool size when positive.
	Workers int
}

// Result aggregates one run. Artists whose fetch failed appear in Missing
// and have no entry in ReleasesByArtist.
type Result struct {
	ReleasesByArtist map[string][]music.Release
	Missing          []string
	CallCounts       map[string]int64
	RunID            string
	Duration         time.Duration
}

// Releases returns the total number of releases across artists.
func (r *Result) Releases() int {
	total := 0
	for _, releases := range r.ReleasesByArtist {
		total += len(releases)
	}
	return total
}

// Tracker runs discovery over the tracked artist set.
type Tracker struct {
	store   *store.Store
	cache   *releasecache.Cache
	fetcher *fetcher.Fetcher
	policy  *retry.Policy
	workers int
	logger  *slog.Logger

	now func() time.Time
}

func New(s *store.Store, cache *releasecache.Cache, f *fetcher.Fetcher, policy *retry.Policy, workers int, logger *slog.Logger) *Tracker {
	if workers <= 0 {
		workers = 8
	}
	return &Tracker{
		store:   s,
		cache:   cache,
		fetcher: f,
		policy:  policy,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "tracker"),
		now:     time.Now,
	}
}

// Discover finds every release dated at or after cutoff for the given
// artists. Fresh cache entries are served with zero upstream calls. If the
// context expires mid-run, artists not yet processed land in Missing and
// completed artists are still returned. The run is recorded in history.
func (t *Tracker) Discover(ctx context.Context, artistIDs []string, cutoff time.Time, opts Options) (*Result, error) {
	start := t.now()
	before := t.policy.Counters().Snapshot()

	workers := t.workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	var mu sync.Mutex
	byArtist := make(map[string][]music.Release, len(artistIDs))
	var missing []string

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, artistID := range artistIDs {
		artistID := artistID
		group.Go(func() error {
			if groupCtx.Err() != nil {
				mu.Lock()
				missing = append(missing, artistID)
				mu.Unlock()
				return nil
			}
			releases, err := t.processArtist(groupCtx, artistID, cutoff, opts.ForceRefresh)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.logger.Warn("artist failed, continuing run",
					logging.String(logging.FieldArtistID, artistID),
					logging.Error(err))
				missing = append(missing, artistID)
				return nil
			}
			byArtist[artistID] = releases
			return nil
		})
	}
	_ = group.Wait()

	if opts.MaxPerArtist > 0 {
		for artistID, releases := range byArtist {
			byArtist[artistID] = Cap(releases, opts.MaxPerArtist)
		}
	}
	sort.Strings(missing)

	result := &Result{
		ReleasesByArtist: byArtist,
		Missing:          missing,
		CallCounts:       countersDelta(before, t.policy.Counters().Snapshot()),
		Duration:         t.now().Sub(start),
	}
	t.recordRun(ctx, result, cutoff)
	t.logger.Info("discovery run finished",
		logging.Int("artists", len(byArtist)),
		logging.Int("missing", len(missing)),
		logging.Int("releases", result.Releases()),
		logging.Any("api_calls", result.CallCounts),
		logging.Duration("took", result.Duration))
	return result, nil
}

// processArtist runs the per-artist pipeline sequentially: cache lookup,
// fetch on miss or staleness, write-through.
func (t *Tracker) processArtist(ctx context.Context, artistID string, cutoff time.Time, forceRefresh bool) ([]music.Release, error) {
	if forceRefresh {
		if err := t.cache.Invalidate(ctx, artistID); err != nil {
			return nil, err
		}
	}

	cached, fresh, err := t.cache.Get(ctx, artistID, cutoff)
	if err != nil {
		return nil, err
	}
	if fresh {
		t.logger.Debug("cache hit",
			logging.String(logging.FieldArtistID, artistID),
			logging.Int("releases", len(cached)))
		return cached, nil
	}

	artist := music.Artist{ID: artistID}
	known, found, lookupErr := t.store.GetArtist(ctx, artistID)
	switch {
	case lookupErr != nil:
		t.logger.Debug("artist lookup failed, fetching with bare id",
			logging.String(logging.FieldArtistID, artistID),
			logging.Error(lookupErr))
	case found:
		artist = known
	}

	releases, err := t.fetcher.FetchArtist(ctx, artist, cutoff)
	if err != nil {
		return nil, err
	}
	if err := t.cache.Put(ctx, artistID, releases); err != nil {
		return nil, err
	}
	return releases, nil
}

func (t *Tracker) recordRun(ctx context.Context, result *Result, cutoff time.Time) {
	var apiCalls int64
	for _, n := range result.CallCounts {
		apiCalls += n
	}
	lookbackDays := int(t.now().Sub(cutoff).Hours() / 24)
	run := store.Run{
		RunAt:          t.now().UTC(),
		ArtistsTracked: len(result.ReleasesByArtist) + len(result.Missing),
		ReleasesFound:  result.Releases(),
		MissingArtists: len(result.Missing),
		LookbackDays:   lookbackDays,
		Duration:       result.Duration,
		APICalls:       apiCalls,
	}
	// History is best effort. A run that produced results should not fail
	// because the bookkeeping insert did.
	id, err := t.store.RecordRun(context.WithoutCancel(ctx), run)
	if err != nil {
		t.logger.Warn("run history insert failed", logging.Error(err))
		return
	}
	result.RunID = id
}

func countersDelta(before, after map[string]int64) map[string]int64 {
	delta := make(map[string]int64)
	for op, n := range after {
		if diff := n - before[op]; diff > 0 {
			delta[op] = diff
		}
	}
	return delta
}
