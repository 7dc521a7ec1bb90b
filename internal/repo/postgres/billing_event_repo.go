package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

var (
	ErrBillingEventNotFound = errors.New("billing event not found")
	ErrAlreadyResolved      = errors.New("billing event already resolved")
)

// BillingEventRepo journals webhook deliveries. With a nil pool it
// silently drops writes so the API can run without Postgres.
type BillingEventRepo struct {
	pool *pgxpool.Pool
}

func NewBillingEventRepo(pool *pgxpool.Pool) *BillingEventRepo {
	return &BillingEventRepo{pool: pool}
}

func (r *BillingEventRepo) Record(ctx context.Context, ev model.BillingEvent) (string, error) {
	if r.pool == nil {
		return "", nil
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now().UTC()
	}

	var payload *string
	if len(ev.Payload) > 0 {
		s := string(ev.Payload)
		payload = &s
	}

	var id string
	err := r.pool.QueryRow(ctx, `
INSERT INTO billing_events (
	id, provider_event_id, event, subscription_id, payment_id, user_id,
	outcome, needs_review, payload, received_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)
ON CONFLICT (provider_event_id) DO UPDATE SET
	outcome = EXCLUDED.outcome,
	needs_review = billing_events.needs_review OR EXCLUDED.needs_review,
	user_id = COALESCE(EXCLUDED.user_id, billing_events.user_id),
	received_at = EXCLUDED.received_at
RETURNING id::text
`,
		ev.ID,
		nullIfEmpty(ev.ProviderEventID),
		string(ev.Event),
		nullIfEmpty(ev.SubscriptionID),
		nullIfEmpty(ev.PaymentID),
		nullIfEmpty(ev.UserID),
		string(ev.Outcome),
		ev.NeedsReview,
		payload,
		ev.ReceivedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert billing event: %w", err)
	}
	return id, nil
}

// ListNeedsReview returns unresolved events flagged for manual follow-up,
// oldest first.
func (r *BillingEventRepo) ListNeedsReview(ctx context.Context, limit int) ([]model.BillingEvent, error) {
	if r.pool == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	id::text,
	COALESCE(provider_event_id, ''),
	event,
	COALESCE(subscription_id, ''),
	COALESCE(payment_id, ''),
	COALESCE(user_id, ''),
	outcome,
	needs_review,
	COALESCE(payload::text, ''),
	received_at
FROM billing_events
WHERE needs_review AND resolved_at IS NULL
ORDER BY received_at ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query billing events needing review: %w", err)
	}
	defer rows.Close()

	items := make([]model.BillingEvent, 0, limit)
	for rows.Next() {
		var (
			ev      model.BillingEvent
			event   string
			outcome string
			payload string
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.ProviderEventID,
			&event,
			&ev.SubscriptionID,
			&ev.PaymentID,
			&ev.UserID,
			&outcome,
			&ev.NeedsReview,
			&payload,
			&ev.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan billing event: %w", err)
		}
		ev.Event = enums.BillingEvent(event)
		ev.Outcome = enums.BillingEventOutcome(outcome)
		if payload != "" {
			ev.Payload = []byte(payload)
		}
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate billing events: %w", err)
	}

	return items, nil
}

func (r *BillingEventRepo) Resolve(ctx context.Context, id, resolution string, at time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrBillingEventNotFound
	}

	return withLockedEvent(ctx, r.pool, id, func(ctx context.Context, tx pgx.Tx, ev lockedEvent) error {
		if ev.ResolvedAt != nil {
			return ErrAlreadyResolved
		}
		if _, err := tx.Exec(ctx, `
UPDATE billing_events
SET resolved_at = $2, resolution = $3
WHERE id = $1
`, ev.ID, at.UTC(), strings.TrimSpace(resolution)); err != nil {
			return fmt.Errorf("resolve billing event: %w", err)
		}
		return nil
	})
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
