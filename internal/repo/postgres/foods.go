package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/Lauda128109319/food-alert/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnknownOwner comes back from Create when the username has no users row.
var ErrUnknownOwner = errors.New("unknown owner")

type FoodsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewFoodsRepo(pool *pgxpool.Pool, prom *observability.Prom) *FoodsRepo {
	return &FoodsRepo{pool: pool, prom: prom}
}

func (r *FoodsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// ListByOwner returns the owner's items in insertion order. Ids are
// timestamp-prefixed strings generated on add, so id ASC is insertion order,
// which the view layer relies on for stable tie-breaking.
func (r *FoodsRepo) ListByOwner(ctx context.Context, owner string) ([]food.Item, error) {
	var out []food.Item

	err := r.observe("foods.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, owner, name, qty, alert_expiry, display_expiry
			 FROM foods
			 WHERE owner = $1
			 ORDER BY id ASC`,
			owner,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var it food.Item

			err = rows.Scan(&it.ID, &it.Owner, &it.Name, &it.Qty, &it.AlertExpiry, &it.DisplayExpiry)

			if err != nil {
				return err
			}

			out = append(out, it)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *FoodsRepo) Create(ctx context.Context, it food.Item) (food.Item, error) {
	err := r.observe("foods.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO foods (id, owner, name, qty, alert_expiry, display_expiry)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.Owner, it.Name, it.Qty, it.AlertExpiry, it.DisplayExpiry,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return food.Item{}, ErrUnknownOwner
		}

		return food.Item{}, err
	}

	return it, nil
}

func (r *FoodsRepo) GetByID(ctx context.Context, id string) (food.Item, error) {
	var it food.Item

	err := r.observe("foods.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, owner, name, qty, alert_expiry, display_expiry
			 FROM foods WHERE id = $1`,
			id,
		).Scan(&it.ID, &it.Owner, &it.Name, &it.Qty, &it.AlertExpiry, &it.DisplayExpiry)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return food.Item{}, food.ErrNotFound
		}
		return food.Item{}, err
	}

	return it, nil
}

// Update is a full replace with last-write-wins semantics. There is no
// version check: concurrent edits to the same item are unordered.
func (r *FoodsRepo) Update(ctx context.Context, id string, req food.UpdateItemRequest) (food.Item, error) {
	display := time.UnixMilli(req.OriginalExpiry).UTC()
	alert := display.Add(-food.AlertLead)

	var it food.Item

	err := r.observe("foods.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE foods
			 SET name = $2,
			     qty = $3,
			     alert_expiry = $4,
			     display_expiry = $5
			 WHERE id = $1
			 RETURNING id, owner, name, qty, alert_expiry, display_expiry`,
			id, req.Name, req.Qty, alert, display,
		).Scan(&it.ID, &it.Owner, &it.Name, &it.Qty, &it.AlertExpiry, &it.DisplayExpiry)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return food.Item{}, food.ErrNotFound
		}
		return food.Item{}, err
	}

	return it, nil
}

// Delete is idempotent; deleting a missing row is not an error (the original
// server answers 200 either way).
func (r *FoodsRepo) Delete(ctx context.Context, id string) error {
	return r.observe("foods.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id)
		return err
	})
}

// ListNearAlert returns, across all owners, items whose alert expiry falls
// within the window from now. Used by the checker only; read-only.
func (r *FoodsRepo) ListNearAlert(ctx context.Context, now time.Time, within time.Duration) ([]food.Item, error) {
	var out []food.Item

	err := r.observe("foods.list_near_alert", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, owner, name, qty, alert_expiry, display_expiry
			 FROM foods
			 WHERE alert_expiry <= $1
			 ORDER BY owner ASC, alert_expiry ASC, id ASC`,
			now.Add(within),
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var it food.Item

			err = rows.Scan(&it.ID, &it.Owner, &it.Name, &it.Qty, &it.AlertExpiry, &it.DisplayExpiry)

			if err != nil {
				return err
			}

			out = append(out, it)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
