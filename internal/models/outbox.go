package models

import "time"

type OutboxEvent struct {
	ID        int64  `gorm:"primaryKey"`
	EventID   string `gorm:"uniqueIndex;size:64;not null"`
	Topic     string `gorm:"size:128;not null"`
	Key       string `gorm:"size:128"`
	Payload   []byte
	CreatedAt time.Time
	SentAt    *time.Time `gorm:"index"`
}
