package auth

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brenpaiva/ecommerce-store/internal/identity"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

// Claims are the ID token fields a login uses.
type Claims struct {
	Subject string
	Name    string
	Email   string
	Phone   string
	Groups  []string
}

// ClaimsFrom reads Claims out of a decoded ID token. groupsKey names the
// claim carrying group names.
func ClaimsFrom(raw map[string]interface{}, groupsKey string) Claims {
	str := func(k string) string {
		s, _ := raw[k].(string)
		return s
	}
	claims := Claims{
		Subject: str("sub"),
		Name:    str("name"),
		Email:   str("email"),
		Phone:   str("phone_number"),
	}
	switch v := raw[groupsKey].(type) {
	case []interface{}:
		for _, g := range v {
			if s, ok := g.(string); ok && s != "" {
				claims.Groups = append(claims.Groups, s)
			}
		}
	case []string:
		claims.Groups = append(claims.Groups, v...)
	case string:
		if v != "" {
			claims.Groups = []string{v}
		}
	}
	return claims
}

// SignIn upserts the user behind claims, syncs their groups and links them to
// a Customer, carrying over the anonymous cart behind sessionToken.
func SignIn(tx *gorm.DB, claims Claims, sessionToken string) (*models.User, error) {
	if claims.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	var user models.User
	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.User{OIDCID: claims.Subject}).Limit(1).Find(&user).Error; err != nil {
			return err
		}
		user.OIDCID = claims.Subject
		if claims.Name != "" {
			user.Name = claims.Name
		}
		if claims.Email != "" {
			user.Email = claims.Email
		}
		if user.Email == "" {
			user.Email = claims.Subject
		}
		if err := tx.Omit("Groups").Save(&user).Error; err != nil {
			return fmt.Errorf("save user %s: %w", claims.Subject, err)
		}

		groups, err := ensureGroups(tx, claims.Groups)
		if err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Groups").Replace(groups); err != nil {
			return fmt.Errorf("sync groups of user %d: %w", user.ID, err)
		}
		user.Groups = groups

		cust, err := identity.LinkUser(tx, &user, sessionToken)
		if err != nil {
			return err
		}
		if cust.Phone == "" && claims.Phone != "" {
			return tx.Model(cust).Update("phone", claims.Phone).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureGroups(tx *gorm.DB, names []string) ([]models.Group, error) {
	groups := []models.Group{}
	if len(names) == 0 {
		return groups, nil
	}
	for _, name := range names {
		seed := models.Group{Name: name}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return nil, fmt.Errorf("create group %s: %w", name, err)
		}
	}
	if err := tx.Where("name IN ?", names).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
