package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/cart"
	"github.com/brenpaiva/ecommerce-store/internal/events"
	"github.com/brenpaiva/ecommerce-store/internal/logging"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

const StatusApproved = "approved"

var (
	ErrPaymentNotFound  = errors.New("payment: not found")
	ErrInvalidSignature = errors.New("payment: invalid callback signature")
)

// Notifier is told about every order that got finalized.
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order)
}

// Callback is the query string the gateway redirects back with.
type Callback struct {
	Status       string
	PreferenceID string
	Order        string
	Signature    string
}

type Outcome struct {
	Approved bool
	// Replayed is set when the payment had already been approved or the order
	// had already been finalized by another payment.
	Replayed bool
	// Unmatched is set when the payment was approved but the order left
	// pending_payment or its total changed since the preference was created.
	// The order stays open.
	Unmatched bool
	Order     *models.Order
	Payment   *models.Payment
}

type Processor struct {
	Signer   Signer
	Notifier Notifier
	Now      func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// HandleCallback verifies the redirect and, for approved payments, finalizes
// the order. Any status other than approved leaves everything untouched.
func (p *Processor) HandleCallback(ctx context.Context, tx *gorm.DB, cb Callback) (*Outcome, error) {
	orderID, err := strconv.ParseUint(cb.Order, 10, 64)
	if err != nil || !p.Signer.Verify(uint(orderID), cb.Signature) {
		logging.Log(logging.Fields{PaymentID: cb.PreferenceID, Step: "payment_callback", Status: "bad_signature"})
		return nil, ErrInvalidSignature
	}

	tx = tx.WithContext(ctx)

	var pay models.Payment
	err = tx.Where("gateway_id = ? AND order_id = ?", cb.PreferenceID, orderID).First(&pay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if cb.Status != StatusApproved {
		logging.Log(logging.Fields{OrderID: pay.OrderID, PaymentID: pay.GatewayID, Step: "payment_callback", Status: cb.Status})
		return &Outcome{Payment: &pay}, nil
	}

	var result finalizeResult
	err = tx.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).Where("id = ? AND approved = ?", pay.ID, false).Update("approved", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result = finalizeReplayed
			return nil
		}
		result, err = p.finalize(tx, &pay)
		return err
	})
	if err != nil {
		return nil, err
	}
	pay.Approved = true

	order, err := cart.LoadOrder(tx.Preload("Customer"), pay.OrderID)
	if err != nil {
		return nil, err
	}

	status := "finalized"
	switch result {
	case finalizeReplayed:
		status = "replayed"
	case finalizeUnmatched:
		status = "unmatched"
	default:
		if p.Notifier != nil {
			p.Notifier.OrderConfirmed(ctx, order)
		}
	}
	logging.Log(logging.Fields{OrderID: order.ID, CustomerID: order.CustomerID, PaymentID: pay.GatewayID, Step: "payment_callback", Status: status})

	return &Outcome{
		Approved:  true,
		Replayed:  result == finalizeReplayed,
		Unmatched: result == finalizeUnmatched,
		Order:     order,
		Payment:   &pay,
	}, nil
}

type finalizeResult int

const (
	finalizeDone finalizeResult = iota
	finalizeReplayed
	finalizeUnmatched
)

// finalize moves a pending_payment order to finalized and takes its lines out
// of stock. Only one payment can win the conditional update; the others get
// finalizeReplayed.
func (p *Processor) finalize(tx *gorm.DB, pay *models.Payment) (finalizeResult, error) {
	order, err := cart.LoadOrder(tx, pay.OrderID)
	if err != nil {
		return 0, err
	}
	if order.Finalized {
		return finalizeReplayed, nil
	}
	if order.Status != models.OrderStatusPendingPayment || !pay.Amount.Equal(order.Total()) {
		logging.Log(logging.Fields{OrderID: order.ID, PaymentID: pay.GatewayID, Step: "payment_callback", Status: "unmatched",
			Message: fmt.Sprintf("paid %s, order %s is %s", pay.Amount.StringFixed(2), order.Total().StringFixed(2), order.Status)})
		_, err := events.Insert(tx, events.EventPaymentApproved, order.ID, map[string]any{"payment_id": pay.GatewayID, "matched": false})
		return finalizeUnmatched, err
	}

	now := p.now()
	res := tx.Model(&models.Order{}).
		Where("id = ? AND finalized = ? AND status = ?", order.ID, false, models.OrderStatusPendingPayment).
		Updates(map[string]interface{}{
			"finalized":     true,
			"status":        models.OrderStatusFinalized,
			"finalized_at":  now,
			"cart_owner_id": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("finalize order %d: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return finalizeReplayed, nil
	}

	for _, l := range order.Lines {
		err := tx.Model(&models.StockItem{}).Where("id = ?", l.StockItemID).
			Update("quantity", gorm.Expr("quantity - ?", l.Quantity)).Error
		if err != nil {
			return 0, fmt.Errorf("decrement stock item %d: %w", l.StockItemID, err)
		}
		if l.StockItem != nil && l.StockItem.Quantity < l.Quantity {
			logging.Log(logging.Fields{OrderID: order.ID, Step: "stock_decrement", Status: "oversold",
				Message: fmt.Sprintf("stock item %d had %d, sold %d", l.StockItemID, l.StockItem.Quantity, l.Quantity)})
		}
	}

	if _, err := events.Insert(tx, events.EventPaymentApproved, order.ID, map[string]any{"payment_id": pay.GatewayID}); err != nil {
		return 0, err
	}
	_, err = events.Insert(tx, events.EventOrderFinalized, order.ID, map[string]any{
		"customer_id": order.CustomerID,
		"total":       order.Total().StringFixed(2),
		"quantity":    order.Quantity(),
	})
	return finalizeDone, err
}
