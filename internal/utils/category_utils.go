package utils

import (
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

// GetAllCategoryIDs returns rootID followed by every descendant category id,
// breadth first.
func GetAllCategoryIDs(tx *gorm.DB, rootID uint) ([]uint, error) {
	var result []uint
	result = append(result, rootID)

	var queue = []uint{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var children []models.Category
		err := tx.Where("parent_id = ?", current).Find(&children).Error
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			result = append(result, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}

// CategoryTreeBySlug resolves slug and expands it to its sub-categories. An
// unknown slug yields an empty list, which filters every product out.
func CategoryTreeBySlug(tx *gorm.DB, slug string) ([]uint, error) {
	var root models.Category
	err := tx.Where("slug = ?", slug).Limit(1).Find(&root).Error
	if err != nil {
		return nil, err
	}
	if root.ID == 0 {
		return []uint{}, nil
	}
	return GetAllCategoryIDs(tx, root.ID)
}
