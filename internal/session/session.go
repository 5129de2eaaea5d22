// Package session is the state-update-then-rerender loop: one command in,
// one mutation through the repository, one full reload, one fresh Snapshot
// out. The full reload per mutation is what keeps the list, calendar and
// autocomplete from ever being shown out of sync.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/Lauda128109319/food-alert/internal/view"
)

type FoodsRepo interface {
	ListByOwner(ctx context.Context, owner string) ([]food.Item, error)
	Create(ctx context.Context, it food.Item) (food.Item, error)
	Update(ctx context.Context, id string, req food.UpdateItemRequest) (food.Item, error)
	Delete(ctx context.Context, id string) error
}

var ErrUnknownCommand = errors.New("unknown command")

// Session replaces the old ambient "current user" and "current month"
// globals: one value per logged-in user, holding the cursor and the
// last-loaded list. A session is shared by every concurrent request for its
// user (a double-click fires two commands at once), so mu serializes
// commands and renders.
type Session struct {
	repo  FoodsRepo
	owner string
	now   func() time.Time

	mu     sync.Mutex
	cursor view.Cursor
	last   []food.Item
	loaded bool
}

func New(repo FoodsRepo, owner string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}

	return &Session{
		repo:   repo,
		owner:  owner,
		cursor: view.CursorFor(now()),
		now:    now,
	}
}

func (s *Session) Cursor() view.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor
}

// Refresh reloads the owner's items and renders.
func (s *Session) Refresh(ctx context.Context) (view.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refresh(ctx)
}

// refresh expects mu to be held.
func (s *Session) refresh(ctx context.Context) (view.Snapshot, error) {
	items, err := s.repo.ListByOwner(ctx, s.owner)

	if err != nil {
		return view.Snapshot{}, err
	}

	s.last = items
	s.loaded = true
	return s.render(), nil
}

// Apply dispatches one command, then reloads and re-renders. Vanished-target
// cases (consume/edit/reschedule of an item deleted meanwhile) abort silently
// and still return a fresh snapshot; last writer wins, no error surfaced.
func (s *Session) Apply(ctx context.Context, cmd Command) (view.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c := cmd.(type) {
	case AddRequested:
		it := food.Item{
			ID:            c.ID,
			Owner:         s.owner,
			Name:          c.Name,
			Qty:           c.Qty,
			DisplayExpiry: c.DisplayExpiry,
			AlertExpiry:   c.DisplayExpiry.Add(-food.AlertLead),
		}

		if _, err := s.repo.Create(ctx, it); err != nil {
			return view.Snapshot{}, err
		}

	case EditRequested:
		req := food.UpdateItemRequest{
			Name:           c.Name,
			Qty:            c.Qty,
			OriginalExpiry: c.DisplayExpiry.UnixMilli(),
		}

		if _, err := s.repo.Update(ctx, c.ID, req); err != nil && !errors.Is(err, food.ErrNotFound) {
			return view.Snapshot{}, err
		}

	case ConsumeRequested:
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return view.Snapshot{}, err
		}

	case RescheduleRequested:
		if err := s.reschedule(ctx, c); err != nil {
			return view.Snapshot{}, err
		}

	case ClearAllRequested:
		items, err := s.repo.ListByOwner(ctx, s.owner)

		if err != nil {
			return view.Snapshot{}, err
		}

		for _, it := range items {
			if err := s.repo.Delete(ctx, it.ID); err != nil {
				return view.Snapshot{}, err
			}
		}

	case MonthChanged:
		// cursor only; render from the list already in hand
		s.cursor = s.cursor.Add(c.Delta)

		if s.loaded {
			return s.render(), nil
		}

		return s.refresh(ctx)

	default:
		return view.Snapshot{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}

	return s.refresh(ctx)
}

// reschedule resolves the dragged id against the last-loaded list. The id is
// the transfer payload, so a stale re-render mid-drag cannot redirect the
// move; if the item vanished since that load, the whole operation is a no-op.
func (s *Session) reschedule(ctx context.Context, c RescheduleRequested) error {
	var target *food.Item

	for i := range s.last {
		if s.last[i].ID == c.ID {
			target = &s.last[i]
			break
		}
	}

	if target == nil {
		return nil
	}

	moved := target.Rescheduled(c.Date)

	req := food.UpdateItemRequest{
		Name:           moved.Name,
		Qty:            moved.Qty,
		OriginalExpiry: moved.DisplayExpiry.UnixMilli(),
	}

	_, err := s.repo.Update(ctx, c.ID, req)

	if err != nil && !errors.Is(err, food.ErrNotFound) {
		return err
	}

	return nil
}

func (s *Session) render() view.Snapshot {
	return view.Render(s.last, view.State{Now: s.now(), Cursor: s.cursor})
}
