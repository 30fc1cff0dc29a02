// Package cart keeps the customer's open order: the one with CartOwnerID set.
package cart

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

var (
	ErrStockItemNotFound = errors.New("cart: no stock item for product, size and color")
	ErrOrderNotFound     = errors.New("cart: order not found")
)

// Item names a SKU by product, size and optional color.
type Item struct {
	ProductID uint
	Size      string
	ColorID   *uint
}

// OpenOrder returns the customer's cart, creating it on first use.
func OpenOrder(tx *gorm.DB, customer *models.Customer) (*models.Order, error) {
	seed := models.Order{
		CustomerID:  customer.ID,
		CartOwnerID: &customer.ID,
		Status:      models.OrderStatusDraft,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("create cart for customer %d: %w", customer.ID, err)
	}

	var order models.Order
	if err := tx.Where("cart_owner_id = ?", customer.ID).First(&order).Error; err != nil {
		return nil, fmt.Errorf("load cart for customer %d: %w", customer.ID, err)
	}
	return &order, nil
}

// FindStockItem resolves the SKU. A nil color matches stock items without one.
func FindStockItem(tx *gorm.DB, item Item) (*models.StockItem, error) {
	q := tx.Where("product_id = ? AND size = ?", item.ProductID, item.Size)
	if item.ColorID != nil {
		q = q.Where("color_id = ?", *item.ColorID)
	} else {
		q = q.Where("color_id IS NULL")
	}

	var stock models.StockItem
	if err := q.First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStockItemNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// AddItem puts one more unit of item in the customer's cart. Adding the same
// SKU again bumps the existing line.
func AddItem(tx *gorm.DB, customer *models.Customer, item Item) (*models.OrderLine, error) {
	var line models.OrderLine

	err := tx.Transaction(func(tx *gorm.DB) error {
		order, err := OpenOrder(tx, customer)
		if err != nil {
			return err
		}
		stock, err := FindStockItem(tx, item)
		if err != nil {
			return err
		}

		seed := models.OrderLine{OrderID: order.ID, StockItemID: stock.ID, Quantity: 1}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "stock_item_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("order_lines.quantity + ?", 1)}),
		}).Create(&seed).Error
		if err != nil {
			return fmt.Errorf("add stock item %d to order %d: %w", stock.ID, order.ID, err)
		}

		if err := reopen(tx, order); err != nil {
			return err
		}
		return tx.Where("order_id = ? AND stock_item_id = ?", order.ID, stock.ID).First(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// RemoveItem takes one unit of item out of the cart and deletes the line once
// it reaches zero. Removing a SKU that is not in the cart does nothing.
func RemoveItem(tx *gorm.DB, customer *models.Customer, item Item) error {
	return tx.Transaction(func(tx *gorm.DB) error {
		order, err := OpenOrder(tx, customer)
		if err != nil {
			return err
		}
		stock, err := FindStockItem(tx, item)
		if err != nil {
			return err
		}

		var line models.OrderLine
		err = tx.Where("order_id = ? AND stock_item_id = ?", order.ID, stock.ID).Limit(1).Find(&line).Error
		if err != nil {
			return err
		}
		if line.ID == 0 {
			return nil
		}

		err = tx.Model(&models.OrderLine{}).Where("id = ?", line.ID).
			Update("quantity", gorm.Expr("quantity - ?", 1)).Error
		if err != nil {
			return fmt.Errorf("decrement order line %d: %w", line.ID, err)
		}
		if err := tx.Where("id = ? AND quantity <= 0", line.ID).Delete(&models.OrderLine{}).Error; err != nil {
			return fmt.Errorf("delete order line %d: %w", line.ID, err)
		}
		return reopen(tx, order)
	})
}

// reopen sends an order that went through checkout back to draft: its lines
// changed, so the submitted total no longer holds.
func reopen(tx *gorm.DB, order *models.Order) error {
	if order.Status != models.OrderStatusPendingPayment {
		return nil
	}
	order.Status = models.OrderStatusDraft
	return tx.Model(order).Update("status", models.OrderStatusDraft).Error
}

// Preload loads what Order.Total and the line descriptions need.
func Preload(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Lines.StockItem.Product").
		Preload("Lines.StockItem.Color")
}

// Load returns the customer's cart with its lines, creating an empty one if
// needed.
func Load(tx *gorm.DB, customer *models.Customer) (*models.Order, error) {
	order, err := OpenOrder(tx, customer)
	if err != nil {
		return nil, err
	}
	return LoadOrder(tx, order.ID)
}

// LoadOrder loads any order with its lines.
func LoadOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := Preload(tx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	sort.Slice(order.Lines, func(i, j int) bool { return order.Lines[i].ID < order.Lines[j].ID })
	return &order, nil
}
