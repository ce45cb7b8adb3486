// Package config loads, normalizes, and validates trackfeed configuration
// from a TOML file with environment overrides for credentials.
package config
