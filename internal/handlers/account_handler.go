package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/auth"
	"github.com/brenpaiva/ecommerce-store/internal/cart"
	"github.com/brenpaiva/ecommerce-store/internal/db"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

type AccountRequest struct {
	Name  string `form:"nome" binding:"required"`
	Email string `form:"email" binding:"required,email"`
	Phone string `form:"telefone"`
}

type AddressRequest struct {
	Street     string `form:"rua" binding:"required"`
	Number     int    `form:"numero" binding:"required,gt=0"`
	Complement string `form:"complemento"`
	PostalCode string `form:"cep" binding:"required"`
	City       string `form:"cidade" binding:"required"`
	State      string `form:"estado" binding:"required"`
}

const errEmailTaken = "email_existente"

var errEmailTakenRollback = errors.New("email taken")

// GET /account
func Account(c *gin.Context) {
	customer, err := resolveCustomer(c, false)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// POST /account
func UpdateAccount(c *gin.Context) {
	var req AccountRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	customer, err := resolveCustomer(c, false)
	if err != nil {
		fail(c, err)
		return
	}
	user := auth.CurrentUser(c)

	taken := false
	err = conn(c).Transaction(func(tx *gorm.DB) error {
		// Guest checkouts may reuse any email; only registered customers own one.
		var others int64
		err := tx.Model(&models.Customer{}).
			Where("email = ? AND id <> ? AND user_id IS NOT NULL", req.Email, customer.ID).
			Count(&others).Error
		if err != nil {
			return err
		}
		if others == 0 && user != nil {
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", req.Email, user.ID).Count(&others).Error; err != nil {
				return err
			}
		}
		if others > 0 {
			taken = true
			return nil
		}

		customer.Name = req.Name
		customer.Email = req.Email
		customer.Phone = req.Phone
		if err := tx.Model(customer).Select("name", "email", "phone").Updates(customer).Error; err != nil {
			return err
		}
		if user != nil {
			err := tx.Model(user).Select("name", "email").Updates(models.User{Name: req.Name, Email: req.Email}).Error
			if db.IsUniqueViolation(err) {
				taken = true
				return errEmailTakenRollback
			}
			return err
		}
		return nil
	})
	if err != nil && !taken {
		fail(c, err)
		return
	}
	if taken {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{errEmailTaken}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// GET /account/orders
func MyOrders(c *gin.Context) {
	customer, err := resolveCustomer(c, false)
	if err != nil {
		fail(c, err)
		return
	}

	var orders []models.Order
	err = cart.Preload(conn(c)).
		Where("customer_id = ? AND finalized = ?", customer.ID, true).
		Order("finalized_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": newOrderViews(orders)})
}

// POST /addresses
func AddAddress(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := resolveCustomer(c, true)
	if err != nil {
		fail(c, err)
		return
	}

	address := models.Address{
		CustomerID: customer.ID,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		PostalCode: req.PostalCode,
		City:       req.City,
		State:      req.State,
	}
	if err := conn(c).Create(&address).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Redirect(http.StatusSeeOther, "/checkout")
}
