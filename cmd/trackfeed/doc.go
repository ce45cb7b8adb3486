// Package main hosts the trackfeed CLI entrypoint and command graph.
//
// The Cobra-based command tree wires the discovery engine together from
// configuration: the SQLite store, the Spotify client, the shared retry
// policy, and the per-artist tracker. Subcommands manage the tracked artist
// set, run discovery, and inspect run history.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
