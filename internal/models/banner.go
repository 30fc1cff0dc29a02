package models

type Banner struct {
	ID     uint `gorm:"primaryKey"`
	Image  string
	Link   string
	Active bool `gorm:"index"`
}
