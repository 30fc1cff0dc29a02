// Package catalog answers the storefront's browsing queries: the filtered
// product listing with its facets, the product page and the home banners.
package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/models"
	"github.com/brenpaiva/ecommerce-store/internal/utils"
)

// Sort tokens accepted in the ordem query parameter.
const (
	SortLowestPrice  = "menor-preco"
	SortHighestPrice = "maior-preco"
	SortName         = "nome"
	SortBestSelling  = "mais-vendidos"
)

// SimilarLimit caps the similar products shown on a product page.
const SimilarLimit = 4

var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrColorNotFound   = errors.New("catalog: color not found")
)

// Filter narrows the listing. Zero values do not filter.
type Filter struct {
	// CategorySlug comes from the path and includes sub-categories.
	CategorySlug string

	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Size     string
	TypeSlug string
	// FormCategory is the categoria form field, matched exactly.
	FormCategory string

	Sort string
}

// Facets describe the filtered set so the filter form can offer only values
// that still match something.
type Facets struct {
	Sizes      []string
	Categories []models.Category
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
}

type Listing struct {
	Products []models.Product
	Facets   Facets
}

// NormalizeSort maps unknown tokens to the default order.
func NormalizeSort(token string) string {
	switch token {
	case SortLowestPrice, SortHighestPrice, SortName, SortBestSelling:
		return token
	default:
		return SortLowestPrice
	}
}

func Browse(tx *gorm.DB, f Filter) (*Listing, error) {
	q := tx.Model(&models.Product{}).Where("active = ?", true)

	if f.CategorySlug != "" {
		ids, err := utils.CategoryTreeBySlug(tx, f.CategorySlug)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return &Listing{Products: []models.Product{}, Facets: Facets{Sizes: []string{}, Categories: []models.Category{}}}, nil
		}
		q = q.Where("category_id IN ?", ids)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Size != "" {
		q = q.Where("id IN (?)", tx.Model(&models.StockItem{}).Select("product_id").Where("size = ?", f.Size))
	}
	if f.TypeSlug != "" {
		q = q.Where("type_id IN (?)", tx.Model(&models.Type{}).Select("id").Where("slug = ?", f.TypeSlug))
	}
	if f.FormCategory != "" {
		q = q.Where("category_id IN (?)", tx.Model(&models.Category{}).Select("id").Where("slug = ?", f.FormCategory))
	}

	sortToken := NormalizeSort(f.Sort)
	switch sortToken {
	case SortHighestPrice:
		q = q.Order("price DESC").Order("id")
	case SortName:
		q = q.Order("name").Order("id")
	default:
		q = q.Order("price").Order("id")
	}

	var products []models.Product
	if err := q.Preload("Category").Preload("Type").Find(&products).Error; err != nil {
		return nil, err
	}

	if sortToken == SortBestSelling {
		if err := sortBySales(tx, products); err != nil {
			return nil, err
		}
	}

	facets, err := facetsOf(tx, products)
	if err != nil {
		return nil, err
	}
	return &Listing{Products: products, Facets: *facets}, nil
}

func facetsOf(tx *gorm.DB, products []models.Product) (*Facets, error) {
	facets := &Facets{Sizes: []string{}, Categories: []models.Category{}}
	if len(products) == 0 {
		return facets, nil
	}

	ids := make([]uint, 0, len(products))
	var categoryIDs []uint
	seen := map[uint]bool{}
	facets.MinPrice = products[0].Price
	facets.MaxPrice = products[0].Price
	for _, p := range products {
		ids = append(ids, p.ID)
		if p.Price.LessThan(facets.MinPrice) {
			facets.MinPrice = p.Price
		}
		if p.Price.GreaterThan(facets.MaxPrice) {
			facets.MaxPrice = p.Price
		}
		if p.CategoryID != nil && !seen[*p.CategoryID] {
			seen[*p.CategoryID] = true
			categoryIDs = append(categoryIDs, *p.CategoryID)
		}
	}

	err := tx.Model(&models.StockItem{}).
		Where("product_id IN ?", ids).
		Distinct().
		Order("size").
		Pluck("size", &facets.Sizes).Error
	if err != nil {
		return nil, err
	}

	if len(categoryIDs) > 0 {
		if err := tx.Where("id IN ?", categoryIDs).Order("name").Find(&facets.Categories).Error; err != nil {
			return nil, err
		}
	}
	return facets, nil
}

type productSales struct {
	ProductID uint
	Units     int
}

// sortBySales orders products by units sold in finalized orders, keeping the
// incoming order among ties.
func sortBySales(tx *gorm.DB, products []models.Product) error {
	var rows []productSales
	err := tx.Table("order_lines").
		Select("stock_items.product_id AS product_id, SUM(order_lines.quantity) AS units").
		Joins("JOIN stock_items ON stock_items.id = order_lines.stock_item_id").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.finalized = ?", true).
		Group("stock_items.product_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	units := make(map[uint]int, len(rows))
	for _, r := range rows {
		units[r.ProductID] = r.Units
	}
	sort.SliceStable(products, func(i, j int) bool {
		return units[products[i].ID] > units[products[j].ID]
	})
	return nil
}

type Detail struct {
	Product      models.Product
	Similar      []models.Product
	Colors       []models.Color
	CurrentColor *models.Color
	StockItems   []models.StockItem
}

// ProductDetail loads a product page. colorID, when set, must name an
// existing color.
func ProductDetail(tx *gorm.DB, productID uint, colorID *uint) (*Detail, error) {
	d := &Detail{}
	if err := tx.Preload("Category").Preload("Type").First(&d.Product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if colorID != nil {
		var color models.Color
		if err := tx.First(&color, *colorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrColorNotFound
			}
			return nil, err
		}
		d.CurrentColor = &color
	}

	similar := tx.Where("id <> ? AND active = ?", d.Product.ID, true)
	similar = matchNullable(similar, "category_id", d.Product.CategoryID)
	similar = matchNullable(similar, "type_id", d.Product.TypeID)
	if err := similar.Order("id").Limit(SimilarLimit).Find(&d.Similar).Error; err != nil {
		return nil, err
	}

	if err := tx.Preload("Color").Where("product_id = ?", d.Product.ID).Order("size").Order("id").Find(&d.StockItems).Error; err != nil {
		return nil, err
	}

	err := tx.Where("id IN (?)", tx.Model(&models.StockItem{}).Select("color_id").Where("product_id = ? AND color_id IS NOT NULL", d.Product.ID)).
		Order("name").
		Find(&d.Colors).Error
	if err != nil {
		return nil, err
	}
	return d, nil
}

func matchNullable(q *gorm.DB, column string, id *uint) *gorm.DB {
	if id == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *id)
}

// AvailableIn reports the sizes of the product's stock items with the color,
// or every size when color is nil.
func (d *Detail) AvailableIn(color *models.Color) []string {
	seen := map[string]bool{}
	var sizes []string
	for _, s := range d.StockItems {
		if color != nil && (s.ColorID == nil || *s.ColorID != color.ID) {
			continue
		}
		if s.Quantity <= 0 || seen[s.Size] {
			continue
		}
		seen[s.Size] = true
		sizes = append(sizes, s.Size)
	}
	return sizes
}

func ActiveBanners(tx *gorm.DB) ([]models.Banner, error) {
	var banners []models.Banner
	err := tx.Where("active = ?", true).Order("id").Find(&banners).Error
	return banners, err
}

// ParsePrice reads a price form field, accepting a comma as decimal
// separator. Blank means no bound.
func ParsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return nil, err
	}
	return &d, nil
}
