package subscription

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/metrics"
)

const (
	reminderWindowStart = 23 * time.Hour
	reminderWindowEnd   = 25 * time.Hour
	reminderKeyTTL      = 48 * time.Hour
)

// ExpiryWorker flips ACTIVE subscriptions past their end date to EXPIRED and
// sends a one-time reminder roughly a day before a subscription ends.
type ExpiryWorker struct {
	repo     Repository
	redis    redis.Cmdable
	mailer   Mailer
	clock    clock.Clock
	interval time.Duration
}

// NewExpiryWorker builds the worker. A nil rdb (untyped or a nil *redis.Client)
// or a nil mailer disables reminders.
func NewExpiryWorker(repo Repository, rdb redis.Cmdable, mailer Mailer, clk clock.Clock, interval time.Duration) *ExpiryWorker {
	if c, ok := rdb.(*redis.Client); ok && c == nil {
		rdb = nil
	}
	return &ExpiryWorker{
		repo:     repo,
		redis:    rdb,
		mailer:   mailer,
		clock:    clk,
		interval: interval,
	}
}

// Start runs a cycle immediately and then on every tick until ctx is done.
func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Subscription expiry worker started", "interval", w.interval.String())
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Subscription expiry worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *ExpiryWorker) RunOnce(ctx context.Context) {
	now := w.clock.Now()

	w.remind(ctx, now)

	n, err := w.repo.ExpireDue(ctx, now)
	if err != nil {
		logger.Errorf("Failed to expire subscriptions: %v", err)
		return
	}
	if n > 0 {
		logger.Infof("Expired %d subscriptions", n)
		metrics.RecordExpiredSubscriptions(n)
	}
}

func (w *ExpiryWorker) remind(ctx context.Context, now time.Time) {
	if w.redis == nil || w.mailer == nil {
		return
	}

	expiring, err := w.repo.FindExpiringBetween(ctx, now.Add(reminderWindowStart), now.Add(reminderWindowEnd))
	if err != nil {
		logger.Errorf("Failed to query expiring subscriptions: %v", err)
		return
	}

	for _, e := range expiring {
		key := "subscription:reminded:" + e.SubscriptionID
		first, err := w.redis.SetNX(ctx, key, "1", reminderKeyTTL).Result()
		if err != nil {
			logger.Warn("reminder dedupe failed", "subscription_id", e.SubscriptionID, "error", err)
			continue
		}
		if !first {
			continue
		}
		if err := w.mailer.SendExpiryReminder(ctx, e.Email, e.Name, e.PlanName, e.EndDate); err != nil {
			logger.Warn("failed to queue expiry reminder", "subscription_id", e.SubscriptionID, "error", err)
			// release the marker so the next cycle retries
			if err := w.redis.Del(ctx, key).Err(); err != nil {
				logger.Warn("failed to release reminder marker", "subscription_id", e.SubscriptionID, "error", err)
			}
		}
	}
}
