package postgres

import (
	"context"

	"github.com/Lauda128109319/food-alert/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeliveriesRepo is the durable log of checker notifications. One row per
// (tag, owner); repeated deliveries overwrite the row, mirroring how the
// notification tag replaces rather than stacks.
type DeliveriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewDeliveriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *DeliveriesRepo {
	return &DeliveriesRepo{pool: pool, prom: prom}
}

func (r *DeliveriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *DeliveriesRepo) RecordSent(ctx context.Context, tag, owner, digest string) error {
	return r.observe("deliveries.record_sent", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO notification_deliveries (tag, owner, digest, status, last_error, sent_at, updated_at)
			VALUES ($1, $2, $3, 'sent', NULL, NOW(), NOW())
			ON CONFLICT (tag, owner) DO UPDATE
			SET digest = $3,
			    status = 'sent',
			    last_error = NULL,
			    sent_at = NOW(),
			    updated_at = NOW()
		`, tag, owner, digest)
		return err
	})
}

func (r *DeliveriesRepo) RecordFailed(ctx context.Context, tag, owner, digest, errMsg string) error {
	return r.observe("deliveries.record_failed", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO notification_deliveries (tag, owner, digest, status, last_error, updated_at)
			VALUES ($1, $2, $3, 'failed', $4, NOW())
			ON CONFLICT (tag, owner) DO UPDATE
			SET digest = $3,
			    status = 'failed',
			    last_error = $4,
			    updated_at = NOW()
		`, tag, owner, digest, errMsg)
		return err
	})
}
