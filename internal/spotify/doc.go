// Package spotify implements the upstream catalog client: client-credentials
// authentication, typed catalog calls, and error classification into the
// rate-limited / transient / permanent taxonomy the retry policy consumes.
package spotify
