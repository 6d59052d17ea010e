package redact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		contains string
		excludes string
	}{
		{
			name:     "database DSN credentials",
			in:       "connect failed: postgres://user:hunter2@db:5432/flashdeck",
			contains: "[REDACTED_DSN]",
			excludes: "hunter2",
		},
		{
			name:     "JWT token",
			in:       "bad token eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.abc123_-",
			contains: "[REDACTED_TOKEN]",
			excludes: "eyJhbGci",
		},
		{
			name:     "email address",
			in:       "profile ada@example.com not found",
			contains: "[REDACTED_EMAIL]",
			excludes: "ada@example.com",
		},
		{
			name:     "file path",
			in:       "open /etc/flashdeck/config.yaml: permission denied",
			contains: "[REDACTED_PATH]",
			excludes: "/etc/flashdeck",
		},
		{
			name:     "sql text",
			in:       `pq: SELECT id, name FROM decks WHERE owner_id = $1 failed`,
			contains: "[REDACTED_SQL]",
			excludes: "FROM decks",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := String(tc.in)
			assert.Contains(t, out, tc.contains)
			assert.NotContains(t, out, tc.excludes)
		})
	}
}

func TestStringPassthrough(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", String(""))
	assert.Equal(t, "deck not found", String("deck not found"))
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Error(nil))
	assert.Contains(t, Error(errors.New("user ada@example.com missing")), "[REDACTED_EMAIL]")
}
