package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/catalog"
	"github.com/brenpaiva/ecommerce-store/internal/dbtest"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func categoryNames(categories []models.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Name)
	}
	return out
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBrowseFilters(t *testing.T) {
	testDB := dbtest.Open(t)
	dbtest.SeedCatalog(t, testDB)

	cases := []struct {
		name   string
		filter catalog.Filter
		want   []string
	}{
		{"active products by lowest price", catalog.Filter{}, []string{"Camiseta Estampada", "Camiseta Basica", "Tenis"}},
		{"path category includes sub-categories", catalog.Filter{CategorySlug: "roupas"}, []string{"Camiseta Estampada", "Camiseta Basica"}},
		{"unknown path category", catalog.Filter{CategorySlug: "acessorios"}, []string{}},
		{"size", catalog.Filter{Size: "M"}, []string{"Camiseta Basica"}},
		{"type", catalog.Filter{TypeSlug: "estampada"}, []string{"Camiseta Estampada"}},
		{"form category is exact", catalog.Filter{FormCategory: "roupas"}, []string{}},
		{"price range", catalog.Filter{MinPrice: price("6"), MaxPrice: price("200")}, []string{"Camiseta Basica", "Tenis"}},
		{"filters are combined", catalog.Filter{CategorySlug: "camisetas", TypeSlug: "basica", Size: "G"}, []string{"Camiseta Basica"}},
		{"highest price", catalog.Filter{Sort: catalog.SortHighestPrice}, []string{"Tenis", "Camiseta Basica", "Camiseta Estampada"}},
		{"name", catalog.Filter{Sort: catalog.SortName}, []string{"Camiseta Basica", "Camiseta Estampada", "Tenis"}},
		{"unknown sort falls back", catalog.Filter{Sort: "aleatorio"}, []string{"Camiseta Estampada", "Camiseta Basica", "Tenis"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			listing, err := catalog.Browse(testDB, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(listing.Products))
		})
	}
}

func TestBrowseFacets(t *testing.T) {
	testDB := dbtest.Open(t)
	dbtest.SeedCatalog(t, testDB)

	all, err := catalog.Browse(testDB, catalog.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "G", "M", "P"}, all.Facets.Sizes)
	assert.Equal(t, []string{"Calcados", "Camisetas"}, categoryNames(all.Facets.Categories))
	assert.Equal(t, "5.50", all.Facets.MinPrice.StringFixed(2))
	assert.Equal(t, "199.90", all.Facets.MaxPrice.StringFixed(2))

	shirts, err := catalog.Browse(testDB, catalog.Filter{CategorySlug: "roupas", Size: "M"})
	require.NoError(t, err)
	assert.Equal(t, []string{"G", "M"}, shirts.Facets.Sizes)
	assert.Equal(t, []string{"Camisetas"}, categoryNames(shirts.Facets.Categories))
	assert.Subset(t, all.Facets.Sizes, shirts.Facets.Sizes)
	assert.Equal(t, "10.00", shirts.Facets.MinPrice.StringFixed(2))
	assert.Equal(t, "10.00", shirts.Facets.MaxPrice.StringFixed(2))

	none, err := catalog.Browse(testDB, catalog.Filter{Size: "XG"})
	require.NoError(t, err)
	assert.Empty(t, none.Products)
	assert.Empty(t, none.Facets.Sizes)
	assert.Empty(t, none.Facets.Categories)
}

func sell(t *testing.T, testDB *gorm.DB, customer models.Customer, finalized bool, lines map[uint]int) {
	t.Helper()
	order := models.Order{CustomerID: customer.ID, Finalized: finalized, Status: models.OrderStatusDraft}
	if finalized {
		order.Status = models.OrderStatusFinalized
	}
	require.NoError(t, testDB.Create(&order).Error)
	for stockItemID, qty := range lines {
		require.NoError(t, testDB.Create(&models.OrderLine{OrderID: order.ID, StockItemID: stockItemID, Quantity: qty}).Error)
	}
}

func TestBrowseBestSelling(t *testing.T) {
	testDB := dbtest.Open(t)
	c := dbtest.SeedCatalog(t, testDB)

	customer := models.Customer{Name: "Ana"}
	require.NoError(t, testDB.Create(&customer).Error)
	sell(t, testDB, customer, true, map[uint]int{c.Sneaker42Black.ID: 3, c.PrintedShirtPWhite.ID: 1})
	sell(t, testDB, customer, true, map[uint]int{c.Sneaker42Black.ID: 1})
	sell(t, testDB, customer, false, map[uint]int{c.BasicShirtMBlack.ID: 10})

	listing, err := catalog.Browse(testDB, catalog.Filter{Sort: catalog.SortBestSelling})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tenis", "Camiseta Estampada", "Camiseta Basica"}, names(listing.Products))
}

func TestProductDetail(t *testing.T) {
	testDB := dbtest.Open(t)
	c := dbtest.SeedCatalog(t, testDB)

	twin := models.Product{Name: "Camiseta Lisa", Price: decimal.RequireFromString("12.00"), Active: true,
		CategoryID: &c.Shirts.ID, TypeID: &c.Basic.ID}
	require.NoError(t, testDB.Create(&twin).Error)

	t.Run("similar, colors and stock", func(t *testing.T) {
		d, err := catalog.ProductDetail(testDB, c.BasicShirt.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, "Camiseta Basica", d.Product.Name)
		require.NotNil(t, d.Product.Category)
		assert.Equal(t, "camisetas", d.Product.Category.Slug)
		assert.Equal(t, []string{"Camiseta Lisa"}, names(d.Similar))
		require.Len(t, d.Colors, 1)
		assert.Equal(t, "Preto", d.Colors[0].Name)
		assert.Len(t, d.StockItems, 3)
		assert.Nil(t, d.CurrentColor)
		assert.Equal(t, []string{"G", "M"}, d.AvailableIn(nil))
	})

	t.Run("current color", func(t *testing.T) {
		d, err := catalog.ProductDetail(testDB, c.BasicShirt.ID, &c.Black.ID)
		require.NoError(t, err)
		require.NotNil(t, d.CurrentColor)
		assert.Equal(t, c.Black.ID, d.CurrentColor.ID)
		assert.Equal(t, []string{"G", "M"}, d.AvailableIn(d.CurrentColor))
		assert.Empty(t, d.AvailableIn(&c.White))
	})

	t.Run("similar list is capped", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			p := models.Product{Name: "Extra", Price: decimal.RequireFromString("1"), Active: true, CategoryID: &c.Shoes.ID, TypeID: &c.Basic.ID}
			require.NoError(t, testDB.Create(&p).Error)
		}
		d, err := catalog.ProductDetail(testDB, c.Sneaker.ID, nil)
		require.NoError(t, err)
		assert.Len(t, d.Similar, catalog.SimilarLimit)
	})

	t.Run("unknown color", func(t *testing.T) {
		missing := uint(9999)
		_, err := catalog.ProductDetail(testDB, c.BasicShirt.ID, &missing)
		assert.ErrorIs(t, err, catalog.ErrColorNotFound)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := catalog.ProductDetail(testDB, 9999, nil)
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestActiveBanners(t *testing.T) {
	testDB := dbtest.Open(t)
	require.NoError(t, testDB.Create(&models.Banner{Image: "verao.jpg", Link: "/loja/roupas", Active: true}).Error)
	require.NoError(t, testDB.Create(&models.Banner{Image: "inverno.jpg", Active: false}).Error)

	banners, err := catalog.ActiveBanners(testDB)
	require.NoError(t, err)
	require.Len(t, banners, 1)
	assert.Equal(t, "verao.jpg", banners[0].Image)
}

func TestParsePrice(t *testing.T) {
	p, err := catalog.ParsePrice("19,90")
	require.NoError(t, err)
	assert.Equal(t, "19.90", p.StringFixed(2))

	p, err = catalog.ParsePrice("  ")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = catalog.ParsePrice("barato")
	assert.Error(t, err)
}
