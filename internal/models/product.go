package models

import "github.com/shopspring/decimal"

type Product struct {
	ID         uint            `gorm:"primaryKey"`
	Name       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Active     bool            `gorm:"not null;index"`
	Image      string          // object name in the image bucket
	CategoryID *uint           `gorm:"index"`
	Category   *Category       `gorm:"constraint:OnDelete:SET NULL;"`
	TypeID     *uint           `gorm:"index"`
	Type       *Type           `gorm:"constraint:OnDelete:SET NULL;"`
	StockItems []StockItem     `gorm:"foreignKey:ProductID"`
}

// StockItem is a sellable variant of a Product: one color and size, with its
// own quantity on hand.
type StockItem struct {
	ID        uint     `gorm:"primaryKey"`
	ProductID uint     `gorm:"index;not null"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE;"`
	ColorID   *uint    `gorm:"index"`
	Color     *Color   `gorm:"constraint:OnDelete:SET NULL;"`
	Size      string   `gorm:"index;not null"`
	Quantity  int      `gorm:"not null;default:0"`
}

// Description is what the payment gateway shows for a line.
func (s StockItem) Description() string {
	name := "Produto"
	if s.Product != nil {
		name = s.Product.Name
	}
	desc := name + ", Tamanho: " + s.Size
	if s.Color != nil {
		desc += ", Cor: " + s.Color.Name
	}
	return desc
}
