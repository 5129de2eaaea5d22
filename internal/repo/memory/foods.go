package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
)

// FoodsRepo keeps items in a slice so insertion order survives, which the
// list view's stable tie-break depends on.
type FoodsRepo struct {
	mu    sync.RWMutex
	items []food.Item
}

func NewFoodsRepo() *FoodsRepo {
	return &FoodsRepo{}
}

func (r *FoodsRepo) ListByOwner(ctx context.Context, owner string) ([]food.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]food.Item, 0, len(r.items))

	for _, it := range r.items {
		if it.Owner == owner {
			out = append(out, it)
		}
	}

	return out, nil
}

func (r *FoodsRepo) Create(ctx context.Context, it food.Item) (food.Item, error) {
	r.mu.Lock()
	r.items = append(r.items, it)
	r.mu.Unlock()

	return it, nil
}

func (r *FoodsRepo) GetByID(ctx context.Context, id string) (food.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}

	return food.Item{}, food.ErrNotFound
}

func (r *FoodsRepo) Update(ctx context.Context, id string, req food.UpdateItemRequest) (food.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.ID == id {
			updated := it.ApplyUpdate(req)
			r.items[i] = updated
			return updated, nil
		}
	}

	return food.Item{}, food.ErrNotFound
}

func (r *FoodsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}

	// idempotent, same as the postgres repo
	return nil
}

func (r *FoodsRepo) ListNearAlert(ctx context.Context, now time.Time, within time.Duration) ([]food.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := now.Add(within)
	out := make([]food.Item, 0)

	for _, it := range r.items {
		if !it.AlertExpiry.After(cutoff) {
			out = append(out, it)
		}
	}

	return out, nil
}
