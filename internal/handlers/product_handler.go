package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brenpaiva/ecommerce-store/internal/catalog"
)

// StoreFilterRequest is the catalog filter form.
type StoreFilterRequest struct {
	MinPrice string `form:"preco_minimo"`
	MaxPrice string `form:"preco_maximo"`
	Size     string `form:"tamanho"`
	Type     string `form:"tipo"`
	Category string `form:"categoria"`
}

func Home(c *gin.Context) {
	banners, err := catalog.ActiveBanners(conn(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(banners))
	for _, b := range banners {
		out = append(out, gin.H{"image": imageURL(c.Request.Context(), b.Image), "link": b.Link})
	}
	c.JSON(http.StatusOK, gin.H{"banners": out})
}

// GET|POST /store[/:category]
func Store(c *gin.Context) {
	var req StoreFilterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	minPrice, err := catalog.ParsePrice(req.MinPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preco_minimo"})
		return
	}
	maxPrice, err := catalog.ParsePrice(req.MaxPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preco_maximo"})
		return
	}

	sortToken := catalog.NormalizeSort(c.Query("ordem"))
	listing, err := catalog.Browse(conn(c), catalog.Filter{
		CategorySlug: c.Param("category"),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Size:         req.Size,
		TypeSlug:     req.Type,
		FormCategory: req.Category,
		Sort:         sortToken,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	categories := make([]gin.H, 0, len(listing.Facets.Categories))
	for _, cat := range listing.Facets.Categories {
		categories = append(categories, gin.H{"name": cat.Name, "slug": cat.Slug})
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   newProductViews(c.Request.Context(), listing.Products),
		"sizes":      listing.Facets.Sizes,
		"categories": categories,
		"minimo":     listing.Facets.MinPrice.StringFixed(2),
		"maximo":     listing.Facets.MaxPrice.StringFixed(2),
		"ordem":      sortToken,
	})
}

// GET /products/:id[/:color]
func ShowProduct(c *gin.Context) {
	productID, ok := parseID(c.Param("id"))
	if !ok {
		fail(c, catalog.ErrProductNotFound)
		return
	}

	var colorID *uint
	if raw := c.Param("color"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			fail(c, catalog.ErrColorNotFound)
			return
		}
		colorID = &id
	}

	d, err := catalog.ProductDetail(conn(c), productID, colorID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":       newProductView(c.Request.Context(), d.Product),
		"similar":       newProductViews(c.Request.Context(), d.Similar),
		"colors":        d.Colors,
		"current_color": d.CurrentColor,
		"sizes":         d.AvailableIn(d.CurrentColor),
	})
}
