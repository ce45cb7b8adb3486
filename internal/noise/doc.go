// Package noise excludes non-original recordings (live versions, remasters,
// demos, and similar) by keyword match on track titles.
package noise
