package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

type categoryNode struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Children []categoryNode `json:"children,omitempty"`
}

// ListCategories returns the navigation menu: the category tree and the
// product types.
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := conn(c).Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var types []models.Type
	if err := conn(c).Order("name").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categoryTree(categories, nil), "types": types})
}

func categoryTree(all []models.Category, parent *uint) []categoryNode {
	nodes := []categoryNode{}
	for _, cat := range all {
		if !sameParent(cat.ParentID, parent) {
			continue
		}
		id := cat.ID
		nodes = append(nodes, categoryNode{Name: cat.Name, Slug: cat.Slug, Children: categoryTree(all, &id)})
	}
	return nodes
}

func sameParent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
