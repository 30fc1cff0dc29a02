package events

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/logging"
)

type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Relay moves committed outbox rows to a Publisher.
type Relay struct {
	DB        *gorm.DB
	Publisher Publisher
	Interval  time.Duration
	BatchSize int
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			logging.Err(logging.Fields{Step: "outbox_relay", Status: "error"}, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Flush publishes one batch in id order and stops at the first failure, so
// rows are never delivered out of order. It returns how many were sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	pending, err := FetchPending(ctx, r.DB, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range pending {
		if err := r.Publisher.Publish(ctx, rec.Key, rec.Payload); err != nil {
			return sent, err
		}
		if err := MarkSent(ctx, r.DB, rec.ID); err != nil {
			return sent, err
		}
		logging.Log(logging.Fields{EventID: rec.EventID, Step: "outbox_relay", Status: "sent"})
		sent++
	}
	return sent, nil
}
