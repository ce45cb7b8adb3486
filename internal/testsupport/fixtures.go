package testsupport

import (
	"path/filepath"
	"testing"
	"time"

	"trackfeed/internal/retry"
	"trackfeed/internal/store"
)

// NewStore opens a throwaway SQLite store under the test's temp dir.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "trackfeed.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// NewPolicy returns a retry policy tuned so tests never block on pacing and
// backoffs stay in the low milliseconds.
func NewPolicy() *retry.Policy {
	return retry.NewPolicy(retry.Options{
		MaxAttempts:    3,
		BaseDelay:      time.Millisecond,
		CallDeadline:   time.Minute,
		RequestsPerSec: 100000,
		Burst:          100000,
	})
}
