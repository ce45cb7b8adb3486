package isrc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"trackfeed/internal/logging"
	"trackfeed/internal/retry"
	"trackfeed/internal/spotify"
	"trackfeed/internal/store"
)

// Resolution is the effective date and album name for a recording after
// deduplication.
type Resolution struct {
	ReleaseDate time.Time
	AlbumName   string
}

// Resolver maps a recording to its earliest known release. Resolution is
// idempotent after the first upstream lookup: cached recordings never call
// upstream again.
type Resolver struct {
	cache   Cache
	catalog spotify.Catalog
	policy  *retry.Policy
	logger  *slog.Logger
}

// NewResolver builds a resolver over the given cache and catalog. The retry
// policy must be the run's shared instance so resolution calls count against
// the same rate budget as pagination.
func NewResolver(cache Cache, catalog spotify.Catalog, policy *retry.Policy, logger *slog.Logger) *Resolver {
	return &Resolver{
		cache:   cache,
		catalog: catalog,
		policy:  policy,
		logger:  logging.NewComponentLogger(logger, "isrc"),
	}
}

// Resolve returns the effective release date and album name for a recording
// observed with the given date and album. A recording without an ISRC passes
// through unchanged. An observed date strictly earlier than the cached one
// updates the cache, guarding against catalogs populated out of order.
func (r *Resolver) Resolve(ctx context.Context, isrcCode string, observedDate time.Time, observedAlbum string) (Resolution, error) {
	isrcCode = strings.TrimSpace(isrcCode)
	if isrcCode == "" {
		return Resolution{ReleaseDate: observedDate, AlbumName: observedAlbum}, nil
	}

	cached, found, err := r.cache.Get(ctx, isrcCode)
	if err != nil && !errors.Is(err, store.ErrCacheCorrupt) {
		return Resolution{}, err
	}
	if found {
		if observedDate.Before(cached.EarliestDate) {
			updated := Entry{ISRC: isrcCode, EarliestDate: observedDate, AlbumName: observedAlbum}
			if err := r.cache.Put(ctx, updated); err != nil {
				return Resolution{}, err
			}
			r.logger.Debug("observed earlier appearance, updating entry",
				logging.String(logging.FieldISRC, isrcCode),
				logging.String("date", observedDate.Format("2006-01-02")))
			return Resolution{ReleaseDate: observedDate, AlbumName: observedAlbum}, nil
		}
		return Resolution{ReleaseDate: cached.EarliestDate, AlbumName: cached.AlbumName}, nil
	}

	var hit spotify.ISRCHit
	err = r.policy.Execute(ctx, "search_isrc", func(ctx context.Context) error {
		var callErr error
		hit, callErr = r.catalog.EarliestByISRC(ctx, isrcCode)
		return callErr
	})
	if err != nil {
		return Resolution{}, err
	}

	entry := Entry{ISRC: isrcCode, EarliestDate: observedDate, AlbumName: observedAlbum}
	if hit.Found && hit.ReleaseDate.Before(observedDate) {
		entry.EarliestDate = hit.ReleaseDate
		entry.AlbumName = hit.AlbumName
	}
	if err := r.cache.Put(ctx, entry); err != nil {
		return Resolution{}, err
	}
	return Resolution{ReleaseDate: entry.EarliestDate, AlbumName: entry.AlbumName}, nil
}
