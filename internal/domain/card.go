package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CardState is the scheduling state carried by every card. It is owned
// exclusively by its card and mutated only by the study scheduler.
type CardState struct {
	// DueAt is when the card next comes up for review.
	DueAt time.Time `json:"due_at"`

	// IntervalDays is the current gap between reviews. Zero means the card
	// is in the learning stage (new or just lapsed).
	IntervalDays int `json:"interval_days"`

	// EaseFactor scales interval growth on success. Never drops below 1.3.
	EaseFactor float64 `json:"ease_factor"`

	// Streak counts consecutive successful reviews.
	Streak int `json:"streak"`

	// Lapses counts failed reviews over the card's lifetime.
	Lapses int `json:"lapses"`
}

// NewCardState returns the state a freshly created card starts with:
// due immediately, standard SM-2 starting ease.
func NewCardState(now time.Time) CardState {
	return CardState{
		DueAt:      now.UTC(),
		EaseFactor: 2.5,
	}
}

// Card is a single flashcard inside a deck. Tags are referenced, not owned.
type Card struct {
	Entity
	DeckID uuid.UUID   `json:"deck_id"`
	Front  string      `json:"front"`
	Back   string      `json:"back"`
	Notes  string      `json:"notes,omitempty"`
	TagIDs []uuid.UUID `json:"tag_ids,omitempty"`
	State  CardState   `json:"state"`
}

// NewCard creates a card in the given deck, due for review immediately.
func NewCard(deckID uuid.UUID, front, back, notes string, now time.Time) (*Card, error) {
	card := &Card{
		Entity: NewEntity(now),
		DeckID: deckID,
		Front:  front,
		Back:   back,
		Notes:  notes,
		State:  NewCardState(now),
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Validate checks the card's fields.
func (c *Card) Validate() error {
	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}
	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}
	return nil
}

// IsDue reports whether the card is due at the given instant.
func (c *Card) IsDue(now time.Time) bool {
	return !c.State.DueAt.After(now)
}
