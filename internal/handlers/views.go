package handlers

import (
	"context"
	"log"
	"time"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

type productView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
}

type lineView struct {
	ID          uint   `json:"id"`
	StockItemID uint   `json:"stock_item_id"`
	Description string `json:"description"`
	Size        string `json:"size"`
	Color       string `json:"color,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type orderView struct {
	ID              uint       `json:"id"`
	Status          string     `json:"status"`
	Finalized       bool       `json:"finalized"`
	TransactionCode string     `json:"transaction_code,omitempty"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`
	Lines           []lineView `json:"lines"`
	Quantity        int        `json:"quantity"`
	Total           string     `json:"total"`
}

func imageURL(ctx context.Context, object string) string {
	if object == "" {
		return ""
	}
	u, err := opts.Images.URL(ctx, object)
	if err != nil {
		log.Printf("Image %s unavailable: %v", object, err)
		return ""
	}
	return u
}

func newProductView(ctx context.Context, p models.Product) productView {
	v := productView{ID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2), Image: imageURL(ctx, p.Image)}
	if p.Category != nil {
		v.Category = p.Category.Slug
	}
	if p.Type != nil {
		v.Type = p.Type.Slug
	}
	return v
}

func newProductViews(ctx context.Context, products []models.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, newProductView(ctx, p))
	}
	return out
}

func newOrderView(o *models.Order) orderView {
	v := orderView{
		ID:              o.ID,
		Status:          string(o.Status),
		Finalized:       o.Finalized,
		TransactionCode: o.TransactionCode,
		FinalizedAt:     o.FinalizedAt,
		Lines:           make([]lineView, 0, len(o.Lines)),
		Quantity:        o.Quantity(),
		Total:           o.Total().StringFixed(2),
	}
	for _, l := range o.Lines {
		lv := lineView{ID: l.ID, StockItemID: l.StockItemID, Quantity: l.Quantity, Total: l.Total().StringFixed(2)}
		if s := l.StockItem; s != nil {
			lv.Description = s.Description()
			lv.Size = s.Size
			if s.Color != nil {
				lv.Color = s.Color.Name
			}
			if s.Product != nil {
				lv.UnitPrice = s.Product.Price.StringFixed(2)
			}
		}
		v.Lines = append(v.Lines, lv)
	}
	return v
}

func newOrderViews(orders []models.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderView(&orders[i]))
	}
	return out
}
