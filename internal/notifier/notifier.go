package notifier

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	config "github.com/brenpaiva/ecommerce-store/configs"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

// Confirmation is everything an order confirmation message shows.
type Confirmation struct {
	CustomerName string
	OrderID      uint
	Total        decimal.Decimal
	Items        []string
}

type EmailSender interface {
	SendEmail(ctx context.Context, recipientEmail string, c Confirmation) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, toPhoneNumber string, c Confirmation) error
}

// Dispatcher fans an order confirmation out to every configured channel in the
// background. A failed channel is logged and does not affect the others.
type Dispatcher struct {
	Email EmailSender
	SMS   SMSSender

	wg sync.WaitGroup
}

func NewConfirmation(order *models.Order) Confirmation {
	c := Confirmation{OrderID: order.ID, Total: order.Total()}
	if order.Customer != nil {
		c.CustomerName = order.Customer.Name
	}
	if c.CustomerName == "" {
		c.CustomerName = "cliente"
	}
	for _, l := range order.Lines {
		if l.StockItem != nil {
			c.Items = append(c.Items, fmt.Sprintf("%dx %s", l.Quantity, l.StockItem.Description()))
		}
	}
	return c
}

// OrderConfirmed expects order with Customer and Lines.StockItem.Product loaded.
func (d *Dispatcher) OrderConfirmed(ctx context.Context, order *models.Order) {
	if order.Customer == nil {
		log.Printf("Order %d has no customer loaded, skipping confirmation", order.ID)
		return
	}
	customer := *order.Customer
	conf := NewConfirmation(order)
	ctx = context.WithoutCancel(ctx)

	if d.SMS != nil && customer.Phone != "" {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.SMS.SendSMS(ctx, customer.Phone, conf); err != nil {
				log.Printf("Failed to send SMS for order %d to %s: %v", conf.OrderID, customer.Phone, err)
			}
		}()
	}

	if d.Email != nil && customer.Email != "" {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.Email.SendEmail(ctx, customer.Email, conf); err != nil {
				log.Printf("Failed to send email for order %d to %s: %v", conf.OrderID, customer.Email, err)
			}
		}()
	}
}

// Wait blocks until every send started so far has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// NewDispatcher wires the channels that have credentials configured.
func NewDispatcher(ctx context.Context, email config.EmailConfig, sms config.AfricaTalkingConfig) *Dispatcher {
	d := &Dispatcher{}

	switch email.Provider {
	case "sendgrid":
		sg, err := NewSendGridNotifier(email.SendGridAPIKey, email.SenderName, email.SenderEmail)
		if err != nil {
			log.Printf("Email confirmations disabled: %v", err)
			break
		}
		d.Email = sg
	default:
		sesNotifier, err := NewSESNotifier(ctx, email)
		if err != nil {
			log.Printf("Email confirmations disabled: %v", err)
			break
		}
		d.Email = sesNotifier
	}

	if sms.Username != "" && sms.APIKey != "" {
		d.SMS = NewSMSNotifier(sms, nil)
	}
	return d
}
