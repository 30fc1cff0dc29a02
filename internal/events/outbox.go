package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

// Topic every outbox row is published to unless the relay overrides it.
const DefaultTopic = "store.events"

// Insert records evt in the outbox through tx, so it commits or rolls back
// with the state change it describes.
func Insert(tx *gorm.DB, eventType string, orderID uint, payload map[string]any) (*models.OutboxEvent, error) {
	evt := Event{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
		Type:      eventType,
		Payload:   payload,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}

	rec := models.OutboxEvent{
		EventID: evt.EventID,
		Topic:   DefaultTopic,
		Key:     strconv.FormatUint(uint64(orderID), 10),
		Payload: data,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("insert outbox event %s: %w", eventType, err)
	}
	return &rec, nil
}

func MarkSent(ctx context.Context, tx *gorm.DB, id int64) error {
	return tx.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).
		Update("sent_at", time.Now().UTC()).Error
}

func FetchPending(ctx context.Context, tx *gorm.DB, limit int) ([]models.OutboxEvent, error) {
	var out []models.OutboxEvent
	err := tx.WithContext(ctx).Where("sent_at IS NULL").Order("id").Limit(limit).Find(&out).Error
	return out, err
}
