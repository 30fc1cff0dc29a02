package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

// Catalog is a small seeded store shared by package tests.
type Catalog struct {
	Clothes, Shirts, Shoes models.Category
	Basic, Printed         models.Type
	Black, White           models.Color

	BasicShirt, PrintedShirt, Sneaker, Retired models.Product

	BasicShirtMBlack, BasicShirtGBlack, BasicShirtMNoColor models.StockItem
	PrintedShirtPWhite, Sneaker42Black, RetiredMBlack      models.StockItem
}

func uintPtr(v uint) *uint { return &v }

func mustCreate(t testing.TB, tx *gorm.DB, v interface{}) {
	t.Helper()
	if err := tx.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

// SeedCatalog fills tx with:
//
//	roupas > camisetas: Camiseta Basica 10.00 (M/preto, G/preto, M/sem cor),
//	                    Camiseta Estampada 5.50 (P/branco),
//	                    Camiseta Antiga 1.00, inactive (M/preto)
//	calcados:           Tenis 199.90 (42/preto)
func SeedCatalog(t testing.TB, tx *gorm.DB) *Catalog {
	t.Helper()
	c := &Catalog{}

	c.Clothes = models.Category{Name: "Roupas", Slug: "roupas"}
	mustCreate(t, tx, &c.Clothes)
	c.Shirts = models.Category{Name: "Camisetas", Slug: "camisetas", ParentID: uintPtr(c.Clothes.ID)}
	mustCreate(t, tx, &c.Shirts)
	c.Shoes = models.Category{Name: "Calcados", Slug: "calcados"}
	mustCreate(t, tx, &c.Shoes)

	c.Basic = models.Type{Name: "Basica", Slug: "basica"}
	mustCreate(t, tx, &c.Basic)
	c.Printed = models.Type{Name: "Estampada", Slug: "estampada"}
	mustCreate(t, tx, &c.Printed)

	c.Black = models.Color{Name: "Preto", Code: "#000000"}
	mustCreate(t, tx, &c.Black)
	c.White = models.Color{Name: "Branco", Code: "#ffffff"}
	mustCreate(t, tx, &c.White)

	c.BasicShirt = models.Product{Name: "Camiseta Basica", Price: decimal.RequireFromString("10.00"), Active: true,
		CategoryID: uintPtr(c.Shirts.ID), TypeID: uintPtr(c.Basic.ID), Image: "basica.jpg"}
	mustCreate(t, tx, &c.BasicShirt)
	c.PrintedShirt = models.Product{Name: "Camiseta Estampada", Price: decimal.RequireFromString("5.50"), Active: true,
		CategoryID: uintPtr(c.Shirts.ID), TypeID: uintPtr(c.Printed.ID)}
	mustCreate(t, tx, &c.PrintedShirt)
	c.Sneaker = models.Product{Name: "Tenis", Price: decimal.RequireFromString("199.90"), Active: true,
		CategoryID: uintPtr(c.Shoes.ID), TypeID: uintPtr(c.Basic.ID)}
	mustCreate(t, tx, &c.Sneaker)
	c.Retired = models.Product{Name: "Camiseta Antiga", Price: decimal.RequireFromString("1.00"), Active: false,
		CategoryID: uintPtr(c.Shirts.ID), TypeID: uintPtr(c.Basic.ID)}
	mustCreate(t, tx, &c.Retired)

	c.BasicShirtMBlack = models.StockItem{ProductID: c.BasicShirt.ID, ColorID: uintPtr(c.Black.ID), Size: "M", Quantity: 10}
	mustCreate(t, tx, &c.BasicShirtMBlack)
	c.BasicShirtGBlack = models.StockItem{ProductID: c.BasicShirt.ID, ColorID: uintPtr(c.Black.ID), Size: "G", Quantity: 5}
	mustCreate(t, tx, &c.BasicShirtGBlack)
	c.BasicShirtMNoColor = models.StockItem{ProductID: c.BasicShirt.ID, Size: "M", Quantity: 3}
	mustCreate(t, tx, &c.BasicShirtMNoColor)
	c.PrintedShirtPWhite = models.StockItem{ProductID: c.PrintedShirt.ID, ColorID: uintPtr(c.White.ID), Size: "P", Quantity: 4}
	mustCreate(t, tx, &c.PrintedShirtPWhite)
	c.Sneaker42Black = models.StockItem{ProductID: c.Sneaker.ID, ColorID: uintPtr(c.Black.ID), Size: "42", Quantity: 2}
	mustCreate(t, tx, &c.Sneaker42Black)
	c.RetiredMBlack = models.StockItem{ProductID: c.Retired.ID, ColorID: uintPtr(c.Black.ID), Size: "M", Quantity: 1}
	mustCreate(t, tx, &c.RetiredMBlack)

	return c
}
