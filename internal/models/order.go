package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft          OrderStatus = "draft"
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusFinalized      OrderStatus = "finalized"
)

type Order struct {
	ID              uint `gorm:"primaryKey"`
	CustomerID      uint `gorm:"index;not null"`
	Customer        *Customer
	CartOwnerID     *uint       `gorm:"uniqueIndex"` // set while the order is a customer's cart
	Status          OrderStatus `gorm:"size:32;not null;default:draft"`
	Finalized       bool        `gorm:"not null;default:false;index"`
	TransactionCode string
	AddressID       *uint
	Address         *Address `gorm:"constraint:OnDelete:SET NULL;"`
	FinalizedAt     *time.Time
	CreatedAt       time.Time
	Lines           []OrderLine `gorm:"foreignKey:OrderID"`
}

type OrderLine struct {
	ID          uint `gorm:"primaryKey"`
	OrderID     uint `gorm:"not null;uniqueIndex:idx_order_stock_item"`
	StockItemID uint `gorm:"not null;uniqueIndex:idx_order_stock_item"`
	StockItem   *StockItem
	Quantity    int `gorm:"not null;default:0"`
}

// Total is quantity × product price. Lines without a loaded product count as zero.
func (l OrderLine) Total() decimal.Decimal {
	if l.StockItem == nil || l.StockItem.Product == nil {
		return decimal.Zero
	}
	return l.StockItem.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total sums the line totals. Lines must be preloaded with StockItem.Product.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Total())
	}
	return total
}

func (o Order) Quantity() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}
