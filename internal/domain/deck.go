package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck is an owned collection of cards with its own study settings.
type Deck struct {
	Entity
	OwnerID     uuid.UUID     `json:"owner_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Settings    StudySettings `json:"settings"`
}

// NewDeck creates a deck for the given owner with default study settings.
// Returns a validation error if the name is empty.
func NewDeck(ownerID uuid.UUID, name, description string, now time.Time) (*Deck, error) {
	deck := &Deck{
		Entity:      NewEntity(now),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Settings:    DefaultStudySettings(),
	}
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks the deck's fields, including its study settings.
func (d *Deck) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckNameEmpty
	}
	return d.Settings.Validate()
}

// OwnedBy reports whether the deck belongs to the given owner.
func (d *Deck) OwnedBy(ownerID uuid.UUID) bool {
	return d.OwnerID == ownerID
}
