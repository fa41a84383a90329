package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/metrics"
)

const dedupTTL = 24 * time.Hour

// DedupChecker provides idempotency checks for webhook deliveries.
// Key format: dedup:identity:<delivery_id>
type DedupChecker struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
// A non-positive ttl falls back to 24h, the provider's retry window.
func NewDedupChecker(client redis.Cmdable, ttl time.Duration) *DedupChecker {
	if ttl <= 0 {
		ttl = dedupTTL
	}
	return &DedupChecker{client: client, ttl: ttl}
}

// IsDuplicate reports whether this delivery has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, deliveryID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(deliveryID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if n > 0 {
		metrics.EventsDedupTotal.WithLabelValues("hit").Inc()
		return true, nil
	}
	metrics.EventsDedupTotal.WithLabelValues("miss").Inc()
	return false, nil
}

// Mark records that this delivery has been processed (expires after ttl).
func (d *DedupChecker) Mark(ctx context.Context, deliveryID string) error {
	if err := d.client.Set(ctx, d.key(deliveryID), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

func (d *DedupChecker) key(deliveryID string) string {
	return "dedup:identity:" + deliveryID
}
