package models

// Customer is whoever holds a cart: an anonymous visitor identified by the
// id_sessao cookie or a logged in User.
type Customer struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Email     string `gorm:"index"`
	Phone     string
	SessionID *string `gorm:"uniqueIndex" json:"-"`
	UserID    *uint   `gorm:"uniqueIndex"`
	User      *User   `json:"-"`
}
