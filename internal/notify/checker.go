package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/Lauda128109319/food-alert/internal/observability"
)

type FoodsLister interface {
	ListNearAlert(ctx context.Context, now time.Time, within time.Duration) ([]food.Item, error)
}

type DeliveryLog interface {
	RecordSent(ctx context.Context, tag, owner, digest string) error
	RecordFailed(ctx context.Context, tag, owner, digest, errMsg string) error
}

type CheckerConfig struct {
	Interval time.Duration // how often to scan
	Window   time.Duration // alertExpiry - now <= Window triggers an alert
	Now      func() time.Time
}

// Checker is the periodic expiry scan. It reads food data, never writes it.
type Checker struct {
	cfg        CheckerConfig
	foods      FoodsLister
	notifier   Notifier
	dedup      DedupStore
	deliveries DeliveryLog
	prom       *observability.Prom
	log        *slog.Logger

	// one scan at a time per process; overlapping ticks are skipped rather
	// than queued, and the shared dedup digest keeps replicas from stacking
	// notifications
	runMu sync.Mutex
}

func NewChecker(
	cfg CheckerConfig,
	foods FoodsLister,
	notifier Notifier,
	dedup DedupStore,
	deliveries DeliveryLog,
	prom *observability.Prom,
	log *slog.Logger,
) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 48 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}

	return &Checker{
		cfg:        cfg,
		foods:      foods,
		notifier:   notifier,
		dedup:      dedup,
		deliveries: deliveries,
		prom:       prom,
		log:        log,
	}
}

func (c *Checker) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	// first scan right away instead of waiting one full interval
	if err := c.RunOnce(ctx); err != nil {
		c.log.Error("expiry scan failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.log.Info("checker received shutdown signal")
			return nil

		case <-ticker.C:
			if err := c.RunOnce(ctx); err != nil {
				c.log.Error("expiry scan failed", "err", err)
			}
		}
	}
}

// RunOnce performs one scan: load everything inside the alert window, group
// per owner, deliver one deduplicated notification per owner.
func (c *Checker) RunOnce(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	start := time.Now()
	now := c.cfg.Now()

	items, err := c.foods.ListNearAlert(ctx, now, c.cfg.Window)

	if err != nil {
		c.observeRun("error", start, 0)
		return err
	}

	byOwner := make(map[string][]food.Item)
	owners := make([]string, 0)

	for _, it := range items {
		if _, ok := byOwner[it.Owner]; !ok {
			owners = append(owners, it.Owner)
		}
		byOwner[it.Owner] = append(byOwner[it.Owner], it)
	}

	for _, owner := range owners {
		c.notifyOwner(ctx, owner, byOwner[owner])
	}

	c.observeRun("ok", start, len(items))
	return nil
}

func (c *Checker) notifyOwner(ctx context.Context, owner string, items []food.Item) {
	title, body := BuildMessage(items)
	digest := Digest(Tag, body)

	last, err := c.dedup.LastDigest(ctx, owner)

	if err != nil {
		c.log.Error("dedup lookup failed", "owner", owner, "err", err)
		// fall through and send; worst case the tag replaces the same message
	}

	if err == nil && last == digest {
		c.countNotification("skipped_duplicate")
		return
	}

	sendErr := c.notifier.SendExpiryAlert(ctx, ExpiryAlertInput{
		Owner: owner,
		Title: title,
		Body:  body,
		Tag:   Tag,
	})

	if sendErr != nil {
		c.countNotification("failed")
		c.log.Error("notification delivery failed", "owner", owner, "err", sendErr)

		if c.deliveries != nil {
			if err := c.deliveries.RecordFailed(ctx, Tag, owner, digest, sendErr.Error()); err != nil {
				c.log.Error("delivery log write failed", "owner", owner, "err", err)
			}
		}
		return
	}

	if err := c.dedup.SetDigest(ctx, owner, digest); err != nil {
		c.log.Error("dedup store write failed", "owner", owner, "err", err)
	}

	if c.deliveries != nil {
		if err := c.deliveries.RecordSent(ctx, Tag, owner, digest); err != nil {
			c.log.Error("delivery log write failed", "owner", owner, "err", err)
		}
	}

	c.countNotification("sent")
	c.log.Info("expiry notification sent", "owner", owner, "items", len(items))
}

func (c *Checker) observeRun(result string, start time.Time, nearCount int) {
	if c.prom == nil {
		return
	}

	c.prom.CheckerRuns.WithLabelValues(result).Inc()
	c.prom.CheckerScanDuration.Observe(time.Since(start).Seconds())
	c.prom.ItemsNearAlertLastRun.Set(float64(nearCount))
}

func (c *Checker) countNotification(outcome string) {
	if c.prom != nil {
		c.prom.NotificationsTotal.WithLabelValues(outcome).Inc()
	}
}
