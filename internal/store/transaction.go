// Package store defines the persistence contracts for the flashcard service:
// per-entity stores covering CRUD reads and writes plus the sync half
// (ChangesSince/SaveChanges), shared sentinel errors and transaction helpers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
)

// TxFn is a function executed within a database transaction. The transaction
// commits if the function returns nil and rolls back otherwise.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxRunner executes a TxFn with whatever atomicity the backing store
// provides. The SQL implementation opens a real transaction; the in-memory
// store passes a nil *sql.Tx and relies on its own locking.
type TxRunner interface {
	RunTx(ctx context.Context, fn TxFn) error
}

// SQLTxRunner is the TxRunner for a live database handle.
type SQLTxRunner struct {
	DB *sql.DB
}

// RunTx executes fn through RunInTransaction.
func (r *SQLTxRunner) RunTx(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, r.DB, fn)
}

// RunInTransaction executes fn inside a transaction, handling rollback on
// error and on panic. Sync pushes rely on this for their all-or-nothing
// batch commit.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return nil
}
