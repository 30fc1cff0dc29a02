// Package checkout turns a cart into a pending payment: it checks the total
// the buyer saw, attaches the shipping address and, for guests, the email,
// then asks the payment gateway for a payable link.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/cart"
	"github.com/brenpaiva/ecommerce-store/internal/db"
	"github.com/brenpaiva/ecommerce-store/internal/events"
	"github.com/brenpaiva/ecommerce-store/internal/logging"
	"github.com/brenpaiva/ecommerce-store/internal/models"
	"github.com/brenpaiva/ecommerce-store/internal/payment"
)

// Validation codes, in the order they are checked.
const (
	CodePrice   = "price"
	CodeAddress = "address"
	CodeEmail   = "email"
)

var (
	ErrOrderNotFound       = errors.New("checkout: order not found")
	ErrOrderFinalized      = errors.New("checkout: order already finalized")
	ErrIdempotencyKeyReuse = errors.New("checkout: idempotency key used for another order")
)

// ValidationError lists every check that failed, with what the checkout page
// needs to be shown again.
type ValidationError struct {
	Codes     []string
	Order     *models.Order
	Addresses []models.Address
}

func (e *ValidationError) Error() string {
	return "checkout: invalid " + strings.Join(e.Codes, ", ")
}

type Request struct {
	OrderID        uint
	Total          string
	AddressID      string
	Email          string
	IdempotencyKey string
}

// Requester is the resolved caller.
type Requester struct {
	Customer      *models.Customer
	Authenticated bool
}

type Result struct {
	Order   *models.Order
	Payment *models.Payment
	// Replayed is set when an earlier checkout with the same idempotency key
	// already created the payment.
	Replayed bool
}

type Service struct {
	Gateway payment.Gateway
	Signer  payment.Signer
	// CallbackBase is the absolute URL of the payment callback endpoint.
	CallbackBase string
	Now          func() time.Time
}

var validate = validator.New()

// ValidEmail reports whether s is a well-formed email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ParseTotal reads a submitted total, accepting a comma as decimal separator.
func ParseTotal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
}

// TransactionCode is "{order id}-{unix seconds}".
func TransactionCode(orderID uint, at time.Time) string {
	return fmt.Sprintf("%d-%d", orderID, at.Unix())
}

func (s *Service) Checkout(ctx context.Context, tx *gorm.DB, who Requester, req Request) (*Result, error) {
	tx = tx.WithContext(ctx)

	order, err := cart.LoadOrder(tx, req.OrderID)
	if err != nil {
		if errors.Is(err, cart.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !ownedBy(order, who.Customer) {
		return nil, ErrOrderNotFound
	}
	if order.Finalized {
		return nil, ErrOrderFinalized
	}

	if req.IdempotencyKey != "" {
		if res, err := s.replay(tx, order, req.IdempotencyKey); res != nil || err != nil {
			return res, err
		}
	}

	var codes []string

	if total, err := ParseTotal(req.Total); err != nil || !total.Equal(order.Total()) {
		codes = append(codes, CodePrice)
	}

	address, err := s.resolveAddress(tx, order, who.Customer, req.AddressID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		codes = append(codes, CodeAddress)
	} else {
		order.AddressID = &address.ID
		order.Address = address
	}

	if !who.Authenticated {
		if !ValidEmail(req.Email) {
			codes = append(codes, CodeEmail)
		}
	}

	// The transaction code is stored whether or not the checks pass.
	order.TransactionCode = TransactionCode(order.ID, s.now())

	if len(codes) > 0 {
		err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"transaction_code": order.TransactionCode,
			"address_id":       order.AddressID,
		}).Error
		if err != nil {
			return nil, err
		}
		var addresses []models.Address
		if err := tx.Where("customer_id IN ?", []uint{order.CustomerID, who.Customer.ID}).Order("id").Find(&addresses).Error; err != nil {
			return nil, err
		}
		logging.Log(logging.Fields{OrderID: order.ID, CustomerID: who.Customer.ID, Step: "checkout", Status: "invalid", Message: strings.Join(codes, ",")})
		return nil, &ValidationError{Codes: codes, Order: order, Addresses: addresses}
	}

	// Nothing is committed until the gateway has handed out a link.
	link, err := s.Gateway.CreatePayment(ctx, payment.LineItems(order), s.Signer.CallbackURL(s.CallbackBase, order.ID))
	if err != nil {
		logging.Err(logging.Fields{OrderID: order.ID, Step: "checkout", Status: "gateway_error"}, err)
		if errors.Is(err, payment.ErrGateway) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrGateway, err)
	}

	pay := models.Payment{GatewayID: link.ID, OrderID: order.ID, Link: link.URL, Amount: order.Total()}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		pay.IdempotencyKey = &key
	}
	err = tx.Transaction(func(tx *gorm.DB) error {
		if err := s.submit(tx, order, who, req.Email); err != nil {
			return err
		}
		if err := tx.Create(&pay).Error; err != nil {
			return fmt.Errorf("store payment %s for order %d: %w", link.ID, order.ID, err)
		}
		return nil
	})
	if err != nil {
		// A concurrent checkout with the same key got there first.
		if pay.IdempotencyKey != nil && db.IsUniqueViolation(err) {
			if res, rerr := s.replay(tx, order, *pay.IdempotencyKey); res != nil || rerr != nil {
				return res, rerr
			}
		}
		return nil, err
	}

	logging.Log(logging.Fields{OrderID: order.ID, CustomerID: order.CustomerID, PaymentID: pay.GatewayID, Step: "checkout", Status: "pending_payment"})
	return &Result{Order: order, Payment: &pay}, nil
}

// submit applies a checkout that passed every check.
func (s *Service) submit(tx *gorm.DB, order *models.Order, who Requester, email string) error {
	if !who.Authenticated {
		var owner models.Customer
		err := tx.Where("email = ? AND id <> ?", email, who.Customer.ID).Order("id").Limit(1).Find(&owner).Error
		if err != nil {
			return err
		}
		if owner.ID != 0 {
			order.CustomerID = owner.ID
			order.Customer = &owner
		} else {
			who.Customer.Email = email
			if err := tx.Model(who.Customer).Update("email", email).Error; err != nil {
				return err
			}
		}
	}

	order.Status = models.OrderStatusPendingPayment
	err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"customer_id":      order.CustomerID,
		"address_id":       order.AddressID,
		"transaction_code": order.TransactionCode,
		"status":           order.Status,
	}).Error
	if err != nil {
		return fmt.Errorf("submit order %d: %w", order.ID, err)
	}

	_, err = events.Insert(tx, events.EventOrderCheckedOut, order.ID, map[string]any{
		"customer_id":      order.CustomerID,
		"transaction_code": order.TransactionCode,
		"total":            order.Total().StringFixed(2),
	})
	return err
}

func (s *Service) replay(tx *gorm.DB, order *models.Order, key string) (*Result, error) {
	var pay models.Payment
	if err := tx.Where("idempotency_key = ?", key).Limit(1).Find(&pay).Error; err != nil {
		return nil, err
	}
	if pay.ID == 0 {
		return nil, nil
	}
	if pay.OrderID != order.ID {
		return nil, ErrIdempotencyKeyReuse
	}
	return &Result{Order: order, Payment: &pay, Replayed: true}, nil
}

// resolveAddress returns nil when the id is missing, malformed or not one of
// the customer's addresses.
func (s *Service) resolveAddress(tx *gorm.DB, order *models.Order, customer *models.Customer, raw string) (*models.Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, nil
	}

	var address models.Address
	err = tx.Where("id = ? AND customer_id IN ?", id, []uint{order.CustomerID, customer.ID}).Limit(1).Find(&address).Error
	if err != nil {
		return nil, err
	}
	if address.ID == 0 {
		return nil, nil
	}
	return &address, nil
}

func ownedBy(order *models.Order, customer *models.Customer) bool {
	if order.CustomerID == customer.ID {
		return true
	}
	return order.CartOwnerID != nil && *order.CartOwnerID == customer.ID
}
