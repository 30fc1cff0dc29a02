package payment

import (
	"context"
	"errors"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

// LineItem is what the gateway bills for one order line.
type LineItem struct {
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Link is a payable page at the gateway and the id it will report back.
type Link struct {
	URL string
	ID  string
}

type Gateway interface {
	CreatePayment(ctx context.Context, items []LineItem, callbackURL string) (*Link, error)
}

var ErrGateway = errors.New("payment gateway error")

// LineItems builds the gateway items of an order loaded with
// Lines.StockItem.Product.
func LineItems(order *models.Order) []LineItem {
	items := make([]LineItem, 0, len(order.Lines))
	for _, l := range order.Lines {
		if l.StockItem == nil || l.StockItem.Product == nil {
			continue
		}
		items = append(items, LineItem{
			Description: l.StockItem.Description(),
			UnitPrice:   l.StockItem.Product.Price,
			Quantity:    l.Quantity,
		})
	}
	return items
}

// MercadoPago creates checkout preferences. Its init point is the payment
// link and the preference id comes back as preference_id on the redirect.
type MercadoPago struct {
	client     preference.Client
	currencyID string
}

func NewMercadoPago(accessToken, currencyID string) (*MercadoPago, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("mercado pago access token is not configured")
	}
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercado pago config: %w", err)
	}
	return &MercadoPago{client: preference.NewClient(cfg), currencyID: currencyID}, nil
}

func (m *MercadoPago) CreatePayment(ctx context.Context, items []LineItem, callbackURL string) (*Link, error) {
	req := preference.Request{
		BackURLs: &preference.BackURLsRequest{
			Success: callbackURL,
			Pending: callbackURL,
			Failure: callbackURL,
		},
		AutoReturn: "all",
	}
	for _, it := range items {
		req.Items = append(req.Items, preference.ItemRequest{
			Title:      it.Description,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: m.currencyID,
		})
	}

	resp, err := m.client.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: create preference: %v", ErrGateway, err)
	}
	return &Link{URL: resp.InitPoint, ID: resp.ID}, nil
}
