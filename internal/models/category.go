package models

type Category struct {
	ID       uint       `gorm:"primaryKey"`
	Name     string     `gorm:"not null"`
	Slug     string     `gorm:"uniqueIndex;not null"`
	ParentID *uint      `gorm:"index"` // nullable
	Parent   *Category  `gorm:"constraint:OnDelete:SET NULL;"`
	Children []Category `gorm:"foreignKey:ParentID"`
}

type Type struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null"`
	Slug string `gorm:"uniqueIndex;not null"`
}

type Color struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null"`
	Code string // hex, e.g. #000000
}
