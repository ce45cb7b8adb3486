// Package music defines the domain types shared across the engine: artists,
// catalog entries, tracks, and releases, plus release-date parsing.
package music
