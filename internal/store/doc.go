// Package store persists the engine's durable state in SQLite: cached
// releases, the permanent ISRC lookup table, tracked artists, and run
// history. Upserts are keyed (per track_id, per isrc) so concurrent workers
// writing different keys never conflict.
package store
