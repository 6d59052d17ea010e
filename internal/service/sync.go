package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// SyncService runs the per-entity reconcile exchange: apply the client's
// pushed changes in one atomic batch, then hand back every server-side
// change since the client's token plus a fresh token.
//
// The pull deliberately reads after the push commits its writes, inside the
// same transaction, so the client's own pushes echo back. Clients treat the
// echo as confirmation and deduplicate by ID.
type SyncService struct {
	decks    store.DeckStore
	cards    store.CardStore
	tags     store.TagStore
	profiles store.ProfileStore
	txs      store.TxRunner
	logger   *slog.Logger
}

// NewSyncService creates a SyncService.
func NewSyncService(decks store.DeckStore, cards store.CardStore, tags store.TagStore, profiles store.ProfileStore, txs store.TxRunner, logger *slog.Logger) *SyncService {
	return &SyncService{
		decks:    decks,
		cards:    cards,
		tags:     tags,
		profiles: profiles,
		txs:      txs,
		logger:   logger.With(slog.String("component", "sync_service")),
	}
}

// exchange is the shared push-then-pull flow, parameterized over the entity
// kind by the two store closures.
func exchange[T any](
	ctx context.Context,
	s *SyncService,
	kind string,
	ownerID uuid.UUID,
	req sync.Request[T],
	save func(ctx context.Context, tx *sql.Tx, changes []sync.Change[T], ownerID uuid.UUID) (string, error),
	pull func(ctx context.Context, tx *sql.Tx, token string, ownerID uuid.UUID) ([]sync.Change[T], error),
) (*sync.Response[T], error) {
	var resp *sync.Response[T]

	err := s.txs.RunTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		token, err := save(ctx, tx, req.Changes, ownerID)
		if err != nil {
			return fmt.Errorf("failed to apply pushed %s changes: %w", kind, err)
		}

		changes, err := pull(ctx, tx, req.SinceToken, ownerID)
		if err != nil {
			return fmt.Errorf("failed to collect %s changes: %w", kind, err)
		}

		resp = &sync.Response[T]{
			NextToken: token,
			Changes:   changes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "sync exchange complete",
		slog.String("kind", kind),
		slog.String("owner_id", ownerID.String()),
		slog.Int("pushed", len(req.Changes)),
		slog.Int("pulled", len(resp.Changes)))
	return resp, nil
}

// SyncDecks reconciles the owner's decks.
func (s *SyncService) SyncDecks(ctx context.Context, ownerID uuid.UUID, req sync.Request[*domain.Deck]) (*sync.Response[*domain.Deck], error) {
	return exchange(ctx, s, "deck", ownerID, req,
		func(ctx context.Context, tx *sql.Tx, changes []sync.Change[*domain.Deck], ownerID uuid.UUID) (string, error) {
			return s.decks.WithTx(tx).SaveChanges(ctx, changes, ownerID)
		},
		func(ctx context.Context, tx *sql.Tx, token string, ownerID uuid.UUID) ([]sync.Change[*domain.Deck], error) {
			return s.decks.WithTx(tx).ChangesSince(ctx, token, ownerID)
		},
	)
}

// SyncCards reconciles the cards in the owner's decks.
func (s *SyncService) SyncCards(ctx context.Context, ownerID uuid.UUID, req sync.Request[*domain.Card]) (*sync.Response[*domain.Card], error) {
	return exchange(ctx, s, "card", ownerID, req,
		func(ctx context.Context, tx *sql.Tx, changes []sync.Change[*domain.Card], ownerID uuid.UUID) (string, error) {
			return s.cards.WithTx(tx).SaveChanges(ctx, changes, ownerID)
		},
		func(ctx context.Context, tx *sql.Tx, token string, ownerID uuid.UUID) ([]sync.Change[*domain.Card], error) {
			return s.cards.WithTx(tx).ChangesSince(ctx, token, ownerID)
		},
	)
}

// SyncTags reconciles the owner's tags.
func (s *SyncService) SyncTags(ctx context.Context, ownerID uuid.UUID, req sync.Request[*domain.Tag]) (*sync.Response[*domain.Tag], error) {
	return exchange(ctx, s, "tag", ownerID, req,
		func(ctx context.Context, tx *sql.Tx, changes []sync.Change[*domain.Tag], ownerID uuid.UUID) (string, error) {
			return s.tags.WithTx(tx).SaveChanges(ctx, changes, ownerID)
		},
		func(ctx context.Context, tx *sql.Tx, token string, ownerID uuid.UUID) ([]sync.Change[*domain.Tag], error) {
			return s.tags.WithTx(tx).ChangesSince(ctx, token, ownerID)
		},
	)
}

// SyncProfile reconciles the owner's profile record.
func (s *SyncService) SyncProfile(ctx context.Context, ownerID uuid.UUID, req sync.Request[*domain.UserProfile]) (*sync.Response[*domain.UserProfile], error) {
	return exchange(ctx, s, "profile", ownerID, req,
		func(ctx context.Context, tx *sql.Tx, changes []sync.Change[*domain.UserProfile], ownerID uuid.UUID) (string, error) {
			return s.profiles.WithTx(tx).SaveChanges(ctx, changes, ownerID)
		},
		func(ctx context.Context, tx *sql.Tx, token string, ownerID uuid.UUID) ([]sync.Change[*domain.UserProfile], error) {
			return s.profiles.WithTx(tx).ChangesSince(ctx, token, ownerID)
		},
	)
}
