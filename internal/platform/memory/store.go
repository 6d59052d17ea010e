// Package memory implements the store interfaces over plain maps. It backs
// service and reconciler tests and is suitable for embedded use where a
// client keeps an offline copy of its owner's data. The reconcile semantics
// are identical to the PostgreSQL implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

// Store holds all entity tables behind a single mutex. Batch operations run
// under one lock acquisition, which gives sync pushes the same atomicity the
// PostgreSQL stores get from a transaction.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	decks    map[uuid.UUID]*domain.Deck
	cards    map[uuid.UUID]*domain.Card
	tags     map[uuid.UUID]*domain.Tag
	profiles map[uuid.UUID]*domain.UserProfile
}

// NewStore creates an empty in-memory store. The clock is used to mint sync
// tokens and stamp tombstones; pass time.Now outside tests.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		decks:    make(map[uuid.UUID]*domain.Deck),
		cards:    make(map[uuid.UUID]*domain.Card),
		tags:     make(map[uuid.UUID]*domain.Tag),
		profiles: make(map[uuid.UUID]*domain.UserProfile),
	}
}

// RunTx satisfies store.TxRunner. The store has no transactions; fn runs
// with a nil *sql.Tx and WithTx on the views returns the view unchanged.
func (s *Store) RunTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// Decks returns the deck view of the store.
func (s *Store) Decks() *DeckStore { return &DeckStore{s: s} }

// Cards returns the card view of the store.
func (s *Store) Cards() *CardStore { return &CardStore{s: s} }

// Tags returns the tag view of the store.
func (s *Store) Tags() *TagStore { return &TagStore{s: s} }

// Profiles returns the profile view of the store.
func (s *Store) Profiles() *ProfileStore { return &ProfileStore{s: s} }

// ownsDeck reports deck ownership without locking; callers hold s.mu.
func (s *Store) ownsDeck(deckID, ownerID uuid.UUID) bool {
	deck, ok := s.decks[deckID]
	return ok && deck.OwnerID == ownerID
}

// modifiedAfter reports whether the entity changed after the cutoff, the
// same predicate the SQL stores run: an edit after the cutoff or a deletion
// after it.
func modifiedAfter(e domain.Entity, cutoff time.Time) bool {
	if e.ModifiedAt.After(cutoff) {
		return true
	}
	return e.DeletedAt != nil && e.DeletedAt.After(cutoff)
}

func cloneDeck(d *domain.Deck) *domain.Deck {
	cp := *d
	if d.DeletedAt != nil {
		t := *d.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}

func cloneCard(c *domain.Card) *domain.Card {
	cp := *c
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		cp.DeletedAt = &t
	}
	cp.TagIDs = append([]uuid.UUID(nil), c.TagIDs...)
	return &cp
}

func cloneTag(t *domain.Tag) *domain.Tag {
	cp := *t
	if t.DeletedAt != nil {
		at := *t.DeletedAt
		cp.DeletedAt = &at
	}
	return &cp
}

func cloneProfile(p *domain.UserProfile) *domain.UserProfile {
	cp := *p
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}

// sortByCreated orders entities the way the SQL list queries do.
func sortByCreated[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}
