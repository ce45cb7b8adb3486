package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run summarizes one completed discovery run.
type Run struct {
	ID             string
	RunAt          time.Time
	ArtistsTracked int
	ReleasesFound  int
	MissingArtists int
	LookbackDays   int
	Duration       time.Duration
	APICalls       int64
}

// RecordRun appends a run to the history.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	runAt := run.RunAt
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO run_history (
		    id, run_at, artists_tracked, releases_found, missing_artists,
		    lookback_days, duration_ms, api_calls
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		runAt.UTC().Format(time.RFC3339Nano),
		run.ArtistsTracked,
		run.ReleasesFound,
		run.MissingArtists,
		run.LookbackDays,
		run.Duration.Milliseconds(),
		run.APICalls,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// RunHistory returns the most recent runs, newest first.
func (s *Store) RunHistory(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_at, artists_tracked, releases_found, missing_artists,
		        lookback_days, duration_ms, api_calls
		 FROM run_history
		 ORDER BY run_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var runAtText string
		var durationMS int64
		if err := rows.Scan(
			&run.ID,
			&runAtText,
			&run.ArtistsTracked,
			&run.ReleasesFound,
			&run.MissingArtists,
			&run.LookbackDays,
			&durationMS,
			&run.APICalls,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, runAtText); parseErr == nil {
			run.RunAt = parsed
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
