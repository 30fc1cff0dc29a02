package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID        uint   `gorm:"primaryKey"`
	GatewayID string `gorm:"uniqueIndex;size:400;not null"` // preference id returned by the gateway
	OrderID   uint   `gorm:"index;not null"`
	Order     *Order
	Link      string
	// Amount is the order total the preference was created for.
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	IdempotencyKey *string         `gorm:"uniqueIndex"`
	Approved       bool            `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
