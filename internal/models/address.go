package models

type Address struct {
	ID         uint   `gorm:"primaryKey"`
	CustomerID uint   `gorm:"index;not null"`
	Street     string `gorm:"not null"`
	Number     int
	Complement string
	PostalCode string
	City       string
	State      string
}
