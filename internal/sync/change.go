// Package sync defines the exchange types for incremental synchronization
// between the server and offline-capable clients: tagged upsert/delete
// changes, opaque cursor tokens and the request/response envelopes carried
// over the wire. The per-entity reconcilers that produce and consume these
// live in the store layer.
package sync

// Operation tags a change as an upsert or a deletion.
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// Change is one entity's worth of divergence, exchanged during sync. It is
// never persisted. ETag is reserved for future optimistic-concurrency
// conflict detection and is currently always empty.
type Change[T any] struct {
	Operation Operation `json:"operation"`
	Entity    T         `json:"entity"`
	ETag      string    `json:"etag,omitempty"`
}

// Upsert wraps an entity in an upsert change.
func Upsert[T any](entity T) Change[T] {
	return Change[T]{Operation: OpUpsert, Entity: entity}
}

// Delete wraps an entity in a delete change.
func Delete[T any](entity T) Change[T] {
	return Change[T]{Operation: OpDelete, Entity: entity}
}

// Request is the inbound half of a sync exchange: the client's last known
// token plus its local edits. An empty token means full resync.
type Request[T any] struct {
	SinceToken string      `json:"since_token,omitempty"`
	Changes    []Change[T] `json:"changes"`
}

// Response is the outbound half: the server's changes since the request
// token and the freshly minted cursor the client should store.
type Response[T any] struct {
	NextToken string      `json:"next_token,omitempty"`
	Changes   []Change[T] `json:"changes"`
}
