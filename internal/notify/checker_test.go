package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/Lauda128109319/food-alert/internal/notify"
	"github.com/Lauda128109319/food-alert/internal/repo/memory"
)

type fakeNotifier struct {
	sendFn func(ctx context.Context, in notify.ExpiryAlertInput) error
	sent   []notify.ExpiryAlertInput
}

func (f *fakeNotifier) SendExpiryAlert(ctx context.Context, in notify.ExpiryAlertInput) error {
	f.sent = append(f.sent, in)

	if f.sendFn != nil {
		return f.sendFn(ctx, in)
	}

	return nil
}

type fakeDeliveryLog struct {
	sent   []string // owners
	failed []string
}

func (f *fakeDeliveryLog) RecordSent(ctx context.Context, tag, owner, digest string) error {
	f.sent = append(f.sent, owner)
	return nil
}

func (f *fakeDeliveryLog) RecordFailed(ctx context.Context, tag, owner, digest, errMsg string) error {
	f.failed = append(f.failed, owner)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.August, 10, 9, 0, 0, 0, time.UTC)
}

func seedRepo(t *testing.T, items ...food.Item) *memory.FoodsRepo {
	t.Helper()

	repo := memory.NewFoodsRepo()

	for _, it := range items {
		if _, err := repo.Create(context.Background(), it); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	return repo
}

func nearItem(id, owner, name string, alertIn time.Duration) food.Item {
	alert := fixedNow().Add(alertIn)

	return food.Item{
		ID:            id,
		Owner:         owner,
		Name:          name,
		Qty:           1,
		AlertExpiry:   alert,
		DisplayExpiry: alert.Add(food.AlertLead),
	}
}

func newChecker(repo notify.FoodsLister, n notify.Notifier, d notify.DedupStore, log notify.DeliveryLog) *notify.Checker {
	return notify.NewChecker(notify.CheckerConfig{
		Interval: time.Minute,
		Window:   48 * time.Hour,
		Now:      fixedNow,
	}, repo, n, d, log, nil, nil)
}

func TestRunOnceSendsOnePerOwner(t *testing.T) {
	repo := seedRepo(t,
		nearItem("1", "alice", "牛乳", time.Hour),
		nearItem("2", "alice", "卵", 2*time.Hour),
		nearItem("3", "bob", "豆腐", time.Hour),
		nearItem("4", "alice", "遠い品", 80*time.Hour), // outside the window
	)

	notifier := &fakeNotifier{}
	deliveries := &fakeDeliveryLog{}
	dedup := notify.NewMemoryDedup()

	c := newChecker(repo, notifier, dedup, deliveries)

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2 (one per owner)", len(notifier.sent))
	}

	for _, in := range notifier.sent {
		if in.Tag != notify.Tag {
			t.Fatalf("tag = %q", in.Tag)
		}

		if in.Title != "賞味期限が近い食材があります！" {
			t.Fatalf("title = %q", in.Title)
		}
	}

	if len(deliveries.sent) != 2 || len(deliveries.failed) != 0 {
		t.Fatalf("delivery log sent=%d failed=%d", len(deliveries.sent), len(deliveries.failed))
	}
}

func TestRunOnceSkipsUnchangedDigest(t *testing.T) {
	repo := seedRepo(t, nearItem("1", "alice", "牛乳", time.Hour))

	notifier := &fakeNotifier{}
	dedup := notify.NewMemoryDedup()

	c := newChecker(repo, notifier, dedup, &fakeDeliveryLog{})

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1 (second was a duplicate)", len(notifier.sent))
	}
}

func TestRunOnceResendsWhenBodyChanges(t *testing.T) {
	repo := seedRepo(t, nearItem("1", "alice", "牛乳", time.Hour))

	notifier := &fakeNotifier{}
	dedup := notify.NewMemoryDedup()

	c := newChecker(repo, notifier, dedup, &fakeDeliveryLog{})

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// another item enters the window, the body changes, the digest changes
	if _, err := repo.Create(context.Background(), nearItem("2", "alice", "卵", 2*time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(notifier.sent))
	}
}

func TestRunOnceRecordsFailureAndRetriesNextScan(t *testing.T) {
	repo := seedRepo(t, nearItem("1", "alice", "牛乳", time.Hour))

	failing := true

	notifier := &fakeNotifier{
		sendFn: func(ctx context.Context, in notify.ExpiryAlertInput) error {
			if failing {
				return errors.New("provider down")
			}
			return nil
		},
	}

	deliveries := &fakeDeliveryLog{}
	dedup := notify.NewMemoryDedup()

	c := newChecker(repo, notifier, dedup, deliveries)

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	if len(deliveries.failed) != 1 {
		t.Fatalf("failed log entries = %d, want 1", len(deliveries.failed))
	}

	// the digest is only stored on success, so the next scan tries again
	failing = false

	if err := c.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("send attempts = %d, want 2", len(notifier.sent))
	}

	if len(deliveries.sent) != 1 {
		t.Fatalf("sent log entries = %d, want 1", len(deliveries.sent))
	}
}

func TestBuildMessage(t *testing.T) {
	mk := func(names ...string) []food.Item {
		out := make([]food.Item, 0, len(names))

		for i, n := range names {
			out = append(out, nearItem(string(rune('a'+i)), "alice", n, time.Hour))
		}

		return out
	}

	tests := []struct {
		name     string
		items    []food.Item
		wantBody string
	}{
		{"single", mk("牛乳"), "牛乳"},
		{"three", mk("牛乳", "卵", "豆腐"), "牛乳、卵、豆腐"},
		{"overflow", mk("牛乳", "卵", "豆腐", "肉", "魚"), "牛乳、卵、豆腐 他2件"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			title, body := notify.BuildMessage(tt.items)

			if title != "賞味期限が近い食材があります！" {
				t.Fatalf("title = %q", title)
			}

			if body != tt.wantBody {
				t.Fatalf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestDigestChangesWithBody(t *testing.T) {
	a := notify.Digest(notify.Tag, "牛乳")
	b := notify.Digest(notify.Tag, "牛乳、卵")

	if a == b {
		t.Fatalf("different bodies produced the same digest")
	}

	if a != notify.Digest(notify.Tag, "牛乳") {
		t.Fatalf("digest is not deterministic")
	}
}
