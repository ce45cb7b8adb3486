// Package isrc resolves a recording's content identifier to its earliest
// known release. Entries are permanent: once a recording's earliest
// appearance is cached, repeat resolutions never call upstream again.
package isrc
