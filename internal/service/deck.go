package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

// DeckService owns the deck use-cases: creation, retrieval, settings updates
// and soft deletion. Every operation is scoped to the calling owner.
type DeckService struct {
	decks  store.DeckStore
	logger *slog.Logger
	now    func() time.Time
}

// NewDeckService creates a DeckService. A nil clock defaults to time.Now.
func NewDeckService(decks store.DeckStore, logger *slog.Logger, now func() time.Time) *DeckService {
	if now == nil {
		now = time.Now
	}
	return &DeckService{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_service")),
		now:    now,
	}
}

// Create makes a new deck for the owner with default study settings.
func (s *DeckService) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*domain.Deck, error) {
	name, err := sanitizeStrict(name)
	if err != nil {
		return nil, err
	}
	description = sanitizeText(description)

	deck, err := domain.NewDeck(ownerID, name, description, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.decks.Upsert(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}

	s.logger.DebugContext(ctx, "deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return deck, nil
}

// Get retrieves one of the owner's decks. Decks belonging to other owners
// are reported as not found.
func (s *DeckService) Get(ctx context.Context, ownerID, deckID uuid.UUID) (*domain.Deck, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	if !deck.OwnedBy(ownerID) {
		return nil, ErrNotFound
	}
	return deck, nil
}

// List retrieves all of the owner's live decks.
func (s *DeckService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Deck, error) {
	decks, err := s.decks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// Update replaces the deck's name, description and study settings. The
// settings are validated as a whole before anything is written.
func (s *DeckService) Update(ctx context.Context, ownerID, deckID uuid.UUID, name, description string, settings domain.StudySettings) (*domain.Deck, error) {
	deck, err := s.Get(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}

	name, err = sanitizeStrict(name)
	if err != nil {
		return nil, err
	}

	deck.Name = name
	deck.Description = sanitizeText(description)
	deck.Settings = settings
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	deck.Touch(s.now())

	if err := s.decks.Upsert(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to update deck: %w", err)
	}
	return deck, nil
}

// Delete tombstones the deck. Cards stay attached to the tombstoned deck and
// drop out of study queues with it.
func (s *DeckService) Delete(ctx context.Context, ownerID, deckID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, deckID); err != nil {
		return err
	}
	if err := s.decks.SoftDelete(ctx, deckID, s.now()); err != nil {
		if store.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	s.logger.DebugContext(ctx, "deck deleted", slog.String("deck_id", deckID.String()))
	return nil
}
