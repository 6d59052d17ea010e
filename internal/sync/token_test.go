package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 12, 30, 45, 123456789, time.UTC)
	token := NewToken(at)

	cutoff, ok := ParseToken(token)
	require.True(t, ok)
	assert.True(t, cutoff.Equal(at), "round trip preserves the instant to the nanosecond")
}

func TestTokenNormalizesToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 3600)
	at := time.Date(2025, 3, 1, 13, 0, 0, 0, loc)

	token := NewToken(at)
	cutoff, ok := ParseToken(token)
	require.True(t, ok)
	assert.True(t, cutoff.Equal(at))
	assert.Equal(t, time.UTC, cutoff.Location())
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "not-a-token", "12345", "2025-13-99T99:99:99Z"} {
		_, ok := ParseToken(token)
		assert.False(t, ok, "token %q should not parse", token)
	}
}

func TestTokensOrderChronologically(t *testing.T) {
	t.Parallel()

	// Strictly monotonic clocks yield strictly increasing cutoffs, so a
	// client can never lose changes by storing the newest token.
	earlier := NewToken(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	later := NewToken(time.Date(2025, 3, 1, 12, 0, 0, 1, time.UTC))

	a, ok := ParseToken(earlier)
	require.True(t, ok)
	b, ok := ParseToken(later)
	require.True(t, ok)
	assert.True(t, a.Before(b))
}

func TestChangeConstructors(t *testing.T) {
	t.Parallel()

	up := Upsert("payload")
	assert.Equal(t, OpUpsert, up.Operation)
	assert.Equal(t, "payload", up.Entity)
	assert.Empty(t, up.ETag)

	del := Delete("payload")
	assert.Equal(t, OpDelete, del.Operation)
}
