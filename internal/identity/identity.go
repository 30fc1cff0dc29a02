// Package identity maps the caller of a request to a Customer: a logged in
// user through their account link, anyone else through the id_sessao token.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brenpaiva/ecommerce-store/internal/models"
)

const (
	SessionCookie = "id_sessao"
	SessionMaxAge = 30 * 24 * time.Hour
)

var (
	ErrNoIdentity   = errors.New("identity: no user and no session token")
	ErrUserNotFound = errors.New("identity: user not found")
)

// Identity is what a request knows about its caller.
type Identity struct {
	UserID       *uint
	SessionToken string
}

func (id Identity) Authenticated() bool {
	return id.UserID != nil && *id.UserID != 0
}

type Result struct {
	Customer *models.Customer
	// SessionToken is the token to (re)issue when NewSession is true.
	SessionToken string
	NewSession   bool
}

func NewSessionToken() string {
	return uuid.NewString()
}

// Resolve returns the caller's Customer. With create=false an anonymous
// caller without a token gets ErrNoIdentity instead of a fresh session.
func Resolve(tx *gorm.DB, id Identity, create bool) (*Result, error) {
	if id.Authenticated() {
		cust, err := customerForUser(tx, *id.UserID)
		if err != nil {
			return nil, err
		}
		return &Result{Customer: cust}, nil
	}

	res := &Result{SessionToken: id.SessionToken}
	if res.SessionToken == "" {
		if !create {
			return nil, ErrNoIdentity
		}
		res.SessionToken = NewSessionToken()
		res.NewSession = true
	}

	cust, err := customerForSession(tx, res.SessionToken)
	if err != nil {
		return nil, err
	}
	res.Customer = cust
	return res, nil
}

func customerForSession(tx *gorm.DB, token string) (*models.Customer, error) {
	seed := models.Customer{SessionID: &token}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("create session customer: %w", err)
	}

	var cust models.Customer
	if err := tx.Where("session_id = ?", token).First(&cust).Error; err != nil {
		return nil, fmt.Errorf("load session customer: %w", err)
	}
	return &cust, nil
}

func customerForUser(tx *gorm.DB, userID uint) (*models.Customer, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	seed := models.Customer{UserID: &user.ID, Name: user.Name, Email: user.Email}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("create user customer: %w", err)
	}

	var cust models.Customer
	if err := tx.Where("user_id = ?", user.ID).First(&cust).Error; err != nil {
		return nil, fmt.Errorf("load user customer: %w", err)
	}
	return &cust, nil
}

// LinkUser attaches user to a Customer at login. Preference order: the
// customer already linked to user, the anonymous customer behind
// sessionToken (so the cart survives the login), an unlinked customer with
// the same email, a new customer.
func LinkUser(tx *gorm.DB, user *models.User, sessionToken string) (*models.Customer, error) {
	var cust models.Customer

	err := tx.Where("user_id = ?", user.ID).Limit(1).Find(&cust).Error
	if err != nil {
		return nil, err
	}
	if cust.ID != 0 {
		return &cust, nil
	}

	if sessionToken != "" {
		if err := tx.Where("session_id = ? AND user_id IS NULL", sessionToken).Limit(1).Find(&cust).Error; err != nil {
			return nil, err
		}
	}
	if cust.ID == 0 && user.Email != "" {
		if err := tx.Where("email = ? AND user_id IS NULL", user.Email).Order("id").Limit(1).Find(&cust).Error; err != nil {
			return nil, err
		}
	}

	cust.UserID = &user.ID
	cust.Email = user.Email
	if cust.Name == "" {
		cust.Name = user.Name
	}
	if err := tx.Save(&cust).Error; err != nil {
		return nil, fmt.Errorf("link customer to user %d: %w", user.ID, err)
	}
	return &cust, nil
}
