package models

type User struct {
	ID     uint   `gorm:"primaryKey"`
	OIDCID string `gorm:"uniqueIndex;not null"` // OpenID Connect identifier
	Name   string
	Email  string  `gorm:"uniqueIndex;not null"`
	Groups []Group `gorm:"many2many:user_groups;"`
}

type Group struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
