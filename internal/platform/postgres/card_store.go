package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
	"github.com/flashdeck/flashdeck-api/internal/store"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// PostgresCardStore implements the store.CardStore interface using a
// PostgreSQL database as the storage backend. Tag references live in the
// card_tags join table and are replaced wholesale on every upsert.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. If logger is nil, the default logger is used.
func NewPostgresCardStore(db store.DBTX, log *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresCardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
		now:    time.Now,
	}
}

// Ensure PostgresCardStore implements store.CardStore.
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger, now: s.now}
}

const cardColumns = `id, deck_id, front, back, notes,
	due_at, interval_days, ease_factor, streak, lapses,
	created_at, modified_at, deleted_at`

func scanCard(row interface{ Scan(...any) error }) (*domain.Card, error) {
	var card domain.Card
	var notes sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.Front,
		&card.Back,
		&notes,
		&card.State.DueAt,
		&card.State.IntervalDays,
		&card.State.EaseFactor,
		&card.State.Streak,
		&card.State.Lapses,
		&card.CreatedAt,
		&card.ModifiedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	card.Notes = notes.String
	if deletedAt.Valid {
		t := deletedAt.Time
		card.DeletedAt = &t
	}
	return &card, nil
}

// GetByID implements store.CardStore.GetByID.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND deleted_at IS NULL`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, err
	}
	if err := s.loadTagIDs(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// ListByDeck implements store.CardStore.ListByDeck.
func (s *PostgresCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE deck_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, card := range cards {
		if err := s.loadTagIDs(ctx, card); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// Upsert implements store.CardStore.Upsert.
func (s *PostgresCardStore) Upsert(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}
	return s.put(ctx, card)
}

// put writes the card row and its tag references without domain validation.
// Sync pushes go through here directly: last writer wins.
func (s *PostgresCardStore) put(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			deck_id = EXCLUDED.deck_id,
			front = EXCLUDED.front,
			back = EXCLUDED.back,
			notes = EXCLUDED.notes,
			due_at = EXCLUDED.due_at,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			streak = EXCLUDED.streak,
			lapses = EXCLUDED.lapses,
			modified_at = EXCLUDED.modified_at,
			deleted_at = EXCLUDED.deleted_at
	`
	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.DeckID,
		card.Front,
		card.Back,
		nullString(card.Notes),
		card.State.DueAt,
		card.State.IntervalDays,
		card.State.EaseFactor,
		card.State.Streak,
		card.State.Lapses,
		card.CreatedAt,
		card.ModifiedAt,
		card.DeletedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("card references unknown deck",
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return fmt.Errorf("%w: deck with ID %s not found", store.ErrInvalidEntity, card.DeckID)
		}
		log.Error("failed to upsert card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}
	return s.replaceTagIDs(ctx, card)
}

// SoftDelete implements store.CardStore.SoftDelete.
func (s *PostgresCardStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE cards SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := s.db.ExecContext(ctx, query, id, at.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}
	return nil
}

// ChangesSince implements store.CardStore.ChangesSince. Ownership is
// resolved transitively through the owning deck.
func (s *PostgresCardStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.Card], error) {
	query := `
		SELECT c.id, c.deck_id, c.front, c.back, c.notes,
			c.due_at, c.interval_days, c.ease_factor, c.streak, c.lapses,
			c.created_at, c.modified_at, c.deleted_at
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE d.owner_id = $1`
	args := []any{ownerID}
	if cutoff, ok := sync.ParseToken(token); ok {
		query += ` AND (c.modified_at > $2 OR (c.deleted_at IS NOT NULL AND c.deleted_at > $2))`
		args = append(args, cutoff)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	changes := make([]sync.Change[*domain.Card], 0, len(cards))
	for _, card := range cards {
		if err := s.loadTagIDs(ctx, card); err != nil {
			return nil, err
		}
		if card.IsDeleted() {
			changes = append(changes, sync.Delete(card))
		} else {
			changes = append(changes, sync.Upsert(card))
		}
	}
	return changes, nil
}

// SaveChanges implements store.CardStore.SaveChanges. The ownership gate is
// transitive: a change is applied only when the caller owns the card's deck.
// Callers must run it inside a transaction via WithTx.
func (s *PostgresCardStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.Card],
	ownerID uuid.UUID,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	for _, change := range changes {
		card := change.Entity
		if card == nil {
			log.Debug("skipping card change with no entity payload")
			continue
		}

		owns, err := s.ownsDeck(ctx, card.DeckID, ownerID)
		if err != nil {
			return "", err
		}
		if !owns {
			log.Debug("skipping card change for deck not owned by caller",
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			continue
		}

		if change.Operation == sync.OpDelete {
			if err := s.applyDelete(ctx, card, now); err != nil {
				return "", err
			}
			continue
		}
		if err := s.put(ctx, card); err != nil {
			return "", err
		}
	}

	return sync.NewToken(now), nil
}

func (s *PostgresCardStore) ownsDeck(ctx context.Context, deckID, ownerID uuid.UUID) (bool, error) {
	var owns bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM decks WHERE id = $1 AND owner_id = $2)`,
		deckID, ownerID,
	).Scan(&owns)
	return owns, err
}

func (s *PostgresCardStore) applyDelete(ctx context.Context, card *domain.Card, now time.Time) error {
	deletedAt := now
	if card.DeletedAt != nil {
		deletedAt = card.DeletedAt.UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET deleted_at = $2, modified_at = $2 WHERE id = $1`,
		card.ID, deletedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	card.MarkDeleted(deletedAt)
	return s.put(ctx, card)
}

// loadTagIDs populates the card's tag references from the join table.
func (s *PostgresCardStore) loadTagIDs(ctx context.Context, card *domain.Card) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM card_tags WHERE card_id = $1 ORDER BY tag_id`, card.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	card.TagIDs = nil
	for rows.Next() {
		var tagID uuid.UUID
		if err := rows.Scan(&tagID); err != nil {
			return err
		}
		card.TagIDs = append(card.TagIDs, tagID)
	}
	return rows.Err()
}

// replaceTagIDs rewrites the card's join rows to match the incoming set.
func (s *PostgresCardStore) replaceTagIDs(ctx context.Context, card *domain.Card) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM card_tags WHERE card_id = $1`, card.ID); err != nil {
		return err
	}
	for _, tagID := range card.TagIDs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO card_tags (card_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			card.ID, tagID); err != nil {
			return err
		}
	}
	return nil
}
