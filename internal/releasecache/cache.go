// Package releasecache layers TTL freshness on top of the persistent
// release rows in the store. Entries age at different speeds depending on
// how new the music is: an artist with a days-old single is rechecked far
// more often than one whose latest release is months old.
package releasecache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"trackfeed/internal/config"
	"trackfeed/internal/logging"
	"trackfeed/internal/music"
	"trackfeed/internal/store"
)

// TTLPolicy maps a release date to how long cached rows covering it stay
// fresh. Tiers come from configuration.
type TTLPolicy struct {
	freshAge   time.Duration
	freshTTL   time.Duration
	recentAge  time.Duration
	recentTTL  time.Duration
	archiveTTL time.Duration
}

// NewTTLPolicy builds a policy from the cache section of the config.
func NewTTLPolicy(cfg config.Cache) TTLPolicy {
	return TTLPolicy{
		freshAge:   time.Duration(cfg.FreshAgeDays) * 24 * time.Hour,
		freshTTL:   time.Duration(cfg.FreshTTLHours) * time.Hour,
		recentAge:  time.Duration(cfg.RecentAgeDays) * 24 * time.Hour,
		recentTTL:  time.Duration(cfg.RecentTTLHours) * time.Hour,
		archiveTTL: time.Duration(cfg.ArchiveTTLHours) * time.Hour,
	}
}

// TTL returns how long a fetch covering a release with the given date can be
// reused.
func (p TTLPolicy) TTL(releaseDate, now time.Time) time.Duration {
	age := now.Sub(releaseDate)
	switch {
	case age < p.freshAge:
		return p.freshTTL
	case age < p.recentAge:
		return p.recentTTL
	default:
		return p.archiveTTL
	}
}

// Cache serves per-artist release sets with staleness checks. Corrupt rows
// are treated as a miss so the next fetch repairs them.
type Cache struct {
	store  *store.Store
	policy TTLPolicy
	logger *slog.Logger

	now func() time.Time
}

func New(s *store.Store, policy TTLPolicy, logger *slog.Logger) *Cache {
	return &Cache{
		store:  s,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "releasecache"),
		now:    time.Now,
	}
}

// Get returns the cached releases for an artist within the window and whether
// they are still fresh. The TTL tier is chosen by the newest release in the
// set, and the set is stale once its oldest fetch stamp exceeds that TTL. A
// corrupt set is dropped and reported as a miss.
func (c *Cache) Get(ctx context.Context, artistID string, cutoff time.Time) ([]music.Release, bool, error) {
	releases, err := c.store.CachedReleases(ctx, artistID, cutoff)
	if err != nil {
		if errors.Is(err, store.ErrCacheCorrupt) {
			c.logger.Warn("dropping corrupt cache entries",
				logging.String(logging.FieldArtistID, artistID),
				logging.Error(err))
			if _, dropErr := c.store.InvalidateArtist(ctx, artistID); dropErr != nil {
				return nil, false, dropErr
			}
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(releases) == 0 {
		return nil, c.emptySetFresh(ctx, artistID), nil
	}

	now := c.now().UTC()
	ttl := c.policy.TTL(newestReleaseDate(releases), now)
	oldestFetch := releases[0].FetchedAt
	for _, release := range releases[1:] {
		if release.FetchedAt.Before(oldestFetch) {
			oldestFetch = release.FetchedAt
		}
	}
	fresh := now.Sub(oldestFetch) < ttl
	return releases, fresh, nil
}

// emptySetFresh reports whether an artist with no cached rows was fetched
// recently enough to skip upstream. A set with nothing in it can gain a
// brand-new release at any moment, so the stamp ages on the shortest tier.
// Errors reading the stamp degrade to a miss.
func (c *Cache) emptySetFresh(ctx context.Context, artistID string) bool {
	stamp, found, err := c.store.ArtistFetchStamp(ctx, artistID)
	if err != nil {
		c.logger.Warn("artist fetch stamp unreadable",
			logging.String(logging.FieldArtistID, artistID),
			logging.Error(err))
		return false
	}
	if !found {
		return false
	}
	return c.now().UTC().Sub(stamp) < c.policy.freshTTL
}

// Put replaces an artist's cached set with the given releases, stamped now.
// A fetch covers the whole window, so rows absent from it are gone upstream
// and must not linger. The fetch stamp is written even for an empty set.
func (c *Cache) Put(ctx context.Context, artistID string, releases []music.Release) error {
	if _, err := c.store.InvalidateArtist(ctx, artistID); err != nil {
		return err
	}
	now := c.now().UTC()
	if err := c.store.UpsertReleases(ctx, releases, now); err != nil {
		return err
	}
	return c.store.TouchArtistFetch(ctx, artistID, now)
}

// Invalidate drops an artist's cached set, forcing the next Get to miss.
func (c *Cache) Invalidate(ctx context.Context, artistID string) error {
	dropped, err := c.store.InvalidateArtist(ctx, artistID)
	if err != nil {
		return err
	}
	if dropped > 0 {
		c.logger.Info("cache invalidated",
			logging.String(logging.FieldArtistID, artistID),
			logging.Int64("rows", dropped))
	}
	return nil
}

func newestReleaseDate(releases []music.Release) time.Time {
	newest := releases[0].ReleaseDate
	for _, release := range releases[1:] {
		if release.ReleaseDate.After(newest) {
			newest = release.ReleaseDate
		}
	}
	return newest
}
