package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/domain/study"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

// ReviewResult is the outcome of grading a card: the rescheduled card plus
// whether the session should show it again before ending.
type ReviewResult struct {
	Card            *domain.Card `json:"card"`
	RepeatInSession bool         `json:"repeat_in_session"`
}

// StudyService owns the review loop: building the due queue for a deck and
// applying ratings to reschedule cards.
type StudyService struct {
	cards  store.CardStore
	decks  store.DeckStore
	txs    store.TxRunner
	logger *slog.Logger
	now    func() time.Time
}

// NewStudyService creates a StudyService. A nil clock defaults to time.Now.
func NewStudyService(cards store.CardStore, decks store.DeckStore, txs store.TxRunner, logger *slog.Logger, now func() time.Time) *StudyService {
	if now == nil {
		now = time.Now
	}
	return &StudyService{
		cards:  cards,
		decks:  decks,
		txs:    txs,
		logger: logger.With(slog.String("component", "study_service")),
		now:    now,
	}
}

// requireDeck loads the deck and verifies ownership, mirroring CardService.
func (s *StudyService) requireDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*domain.Deck, error) {
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

// Queue builds the study queue for one of the owner's decks: due cards in
// due order, capped by the deck's daily review limit.
func (s *StudyService) Queue(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	deck, err := s.requireDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}

	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	queue := study.SelectDue(cards, s.now(), deck.Settings.DailyReviewLimit)
	s.logger.DebugContext(ctx, "study queue built",
		slog.String("deck_id", deckID.String()),
		slog.Int("due", len(queue)))
	return queue, nil
}

// SubmitReview grades a card and persists the rescheduled state. The read
// and write happen inside one transaction so concurrent reviews of the same
// card cannot interleave.
func (s *StudyService) SubmitReview(ctx context.Context, ownerID, cardID uuid.UUID, rating domain.Rating) (*ReviewResult, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: unknown rating %q", domain.ErrValidation, rating)
	}

	var result *ReviewResult
	err := s.txs.RunTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		decks := s.decks.WithTx(tx)

		card, err := cards.GetByID(ctx, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}

		deck, err := decks.GetByID(ctx, card.DeckID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get deck: %w", err)
		}
		if !deck.OwnedBy(ownerID) {
			return ErrNotFound
		}

		now := s.now()
		study.ApplyRating(&card.State, rating, now, deck.Settings)
		card.Touch(now)

		if err := cards.Upsert(ctx, card); err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}

		result = &ReviewResult{
			Card:            card,
			RepeatInSession: study.ShouldRepeatInSession(rating, deck.Settings),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "review applied",
		slog.String("card_id", cardID.String()),
		slog.String("rating", string(rating)),
		slog.Int("interval_days", result.Card.State.IntervalDays))
	return result, nil
}
