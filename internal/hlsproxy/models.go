package hlsproxy

import (
	"errors"
	"time"
)

// StreamKey identifies a configured channel (e.g. "gma7").
type StreamKey string

// Token is the opaque identifier that stands in for an upstream segment URL.
type Token string

// TokenEntry is the value held for each issued token.
// Entries are never updated in place; a token maps to one URL for its whole life.
type TokenEntry struct {
	URL       string
	ExpiresAt time.Time
}

// expired reports whether the entry is no longer resolvable at now.
// The deadline itself is already expired.
func (e TokenEntry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Playlist is the result of fetching and rewriting an upstream playlist.
type Playlist struct {
	Body      string
	Rewritten int // number of lines replaced with token paths
}

var (
	// ErrUnknownStreamKey is returned when the requested stream key is not in the registry.
	ErrUnknownStreamKey = errors.New("unknown stream key")

	// ErrInvalidOrExpiredToken is returned when a token is missing, was never issued,
	// or has passed its deadline.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrUpstreamFetch wraps any transport failure or error status from the origin.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
)
