// Package retry wraps upstream calls with rate-limit-aware retries,
// exponential backoff for transient failures, shared request pacing, and
// per-operation call counting.
package retry
