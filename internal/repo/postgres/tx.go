package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// lockedEvent is a billing_events row held with FOR UPDATE for the
// duration of a journal transaction.
type lockedEvent struct {
	ID         string
	ResolvedAt *time.Time
}

// withLockedEvent opens a transaction, locks the journal row id and hands
// it to fn. The transaction commits only when fn succeeds.
func withLockedEvent(ctx context.Context, pool *pgxpool.Pool, id string, fn func(context.Context, pgx.Tx, lockedEvent) error) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin billing event tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	ev := lockedEvent{ID: id}
	err = tx.QueryRow(ctx, `
SELECT resolved_at
FROM billing_events
WHERE id = $1
FOR UPDATE
`, id).Scan(&ev.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBillingEventNotFound
		}
		return fmt.Errorf("lock billing event: %w", err)
	}

	if err := fn(ctx, tx, ev); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit billing event tx: %w", err)
	}
	return nil
}
