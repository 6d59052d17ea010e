package sync

import "time"

// Tokens are RFC 3339 timestamps with nanosecond precision, treated as
// opaque by clients. A token resolves to a cutoff; delta queries use strict
// greater-than comparisons against it, so re-presenting a token can replay a
// change (at-least-once) but never lose one made before the token was minted.
const tokenLayout = time.RFC3339Nano

// NewToken mints a token for the given instant, normally the commit time of
// the push that produced it.
func NewToken(at time.Time) string {
	return at.UTC().Format(tokenLayout)
}

// ParseToken resolves a token to its cutoff. A missing or unparseable token
// returns ok=false, which callers treat as "from the beginning of time".
func ParseToken(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	cutoff, err := time.Parse(tokenLayout, token)
	if err != nil {
		return time.Time{}, false
	}
	return cutoff, true
}
