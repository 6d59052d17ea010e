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

// CardService owns the card use-cases. A card's owner is whoever owns its
// deck, so every operation resolves the deck first.
type CardService struct {
	cards  store.CardStore
	decks  store.DeckStore
	logger *slog.Logger
	now    func() time.Time
}

// NewCardService creates a CardService. A nil clock defaults to time.Now.
func NewCardService(cards store.CardStore, decks store.DeckStore, logger *slog.Logger, now func() time.Time) *CardService {
	if now == nil {
		now = time.Now
	}
	return &CardService{
		cards:  cards,
		decks:  decks,
		logger: logger.With(slog.String("component", "card_service")),
		now:    now,
	}
}

// requireDeck loads the deck and verifies the caller owns it. Missing and
// foreign decks both come back as ErrNotFound.
func (s *CardService) requireDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*domain.Deck, error) {
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

// Create adds a card to one of the owner's decks. The card starts unseen:
// due immediately, with the initial ease factor.
func (s *CardService) Create(ctx context.Context, ownerID, deckID uuid.UUID, front, back, notes string, tagIDs []uuid.UUID) (*domain.Card, error) {
	if _, err := s.requireDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}

	card, err := domain.NewCard(deckID, sanitizeText(front), sanitizeText(back), sanitizeText(notes), s.now())
	if err != nil {
		return nil, err
	}
	card.TagIDs = tagIDs

	if err := s.cards.Upsert(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}

	s.logger.DebugContext(ctx, "card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))
	return card, nil
}

// Get retrieves one of the owner's cards.
func (s *CardService) Get(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if _, err := s.requireDeck(ctx, ownerID, card.DeckID); err != nil {
		return nil, err
	}
	return card, nil
}

// ListByDeck retrieves all live cards in one of the owner's decks.
func (s *CardService) ListByDeck(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	if _, err := s.requireDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// Update replaces the card's content and tag references. Scheduling state is
// untouched; reviews are the only path that moves it.
func (s *CardService) Update(ctx context.Context, ownerID, cardID uuid.UUID, front, back, notes string, tagIDs []uuid.UUID) (*domain.Card, error) {
	card, err := s.Get(ctx, ownerID, cardID)
	if err != nil {
		return nil, err
	}

	card.Front = sanitizeText(front)
	card.Back = sanitizeText(back)
	card.Notes = sanitizeText(notes)
	card.TagIDs = tagIDs
	if err := card.Validate(); err != nil {
		return nil, err
	}
	card.Touch(s.now())

	if err := s.cards.Upsert(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	return card, nil
}

// Delete tombstones the card.
func (s *CardService) Delete(ctx context.Context, ownerID, cardID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, cardID); err != nil {
		return err
	}
	if err := s.cards.SoftDelete(ctx, cardID, s.now()); err != nil {
		if store.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}
