// Package logging builds slog loggers for trackfeed and provides the
// attribute helpers shared across components.
package logging
