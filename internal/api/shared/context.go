// Package shared holds the request/response helpers common to every API
// handler: context keys, JSON encoding and trace IDs.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"
)

// ContextKey is the type for values the API layer stores in the request
// context.
type ContextKey string

const (
	// OwnerIDContextKey carries the authenticated owner's UUID.
	OwnerIDContextKey ContextKey = "ownerID"

	// TraceIDKey carries the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// traceIDLength is the number of random bytes in a trace ID.
	traceIDLength = 16
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID, or "" if the context has none.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns 32 hex characters of randomness. If crypto/rand
// fails it falls back to a timestamp-derived value rather than a constant.
func generateTraceID() string {
	b := make([]byte, traceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != traceIDLength {
		slog.Error("failed to generate random trace ID",
			"error", err,
			"bytes_read", n)
		binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
		binary.BigEndian.PutUint32(b[8:12], uint32(time.Now().Nanosecond()))
		binary.BigEndian.PutUint32(b[12:16], uint32(time.Now().Unix()))
	}
	return hex.EncodeToString(b)
}
