package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brenpaiva/ecommerce-store/internal/auth"
	"github.com/brenpaiva/ecommerce-store/internal/cart"
	"github.com/brenpaiva/ecommerce-store/internal/checkout"
	"github.com/brenpaiva/ecommerce-store/internal/identity"
	"github.com/brenpaiva/ecommerce-store/internal/models"
	"github.com/brenpaiva/ecommerce-store/internal/payment"
)

type CartItemRequest struct {
	Size  string `form:"tamanho" binding:"required"`
	Color *uint  `form:"cor"`
}

type CheckoutRequest struct {
	Total   string `form:"total"`
	Address string `form:"endereco"`
	Email   string `form:"email"`
}

const idempotencyHeader = "Idempotency-Key"

func cartItem(c *gin.Context) (cart.Item, bool) {
	productID, ok := parseID(c.Param("product"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return cart.Item{}, false
	}

	var req CartItemRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return cart.Item{}, false
	}
	if req.Color != nil && *req.Color == 0 {
		req.Color = nil
	}
	return cart.Item{ProductID: productID, Size: strings.TrimSpace(req.Size), ColorID: req.Color}, true
}

// POST /cart/add/:product
func AddToCart(c *gin.Context) {
	item, ok := cartItem(c)
	if !ok {
		return
	}

	customer, err := resolveCustomer(c, true)
	if err != nil {
		fail(c, err)
		return
	}

	line, err := cart.AddItem(conn(c), customer, item)
	if err != nil {
		fail(c, err)
		return
	}

	order, err := cart.LoadOrder(conn(c), line.OrderID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": newOrderView(order), "line_id": line.ID})
}

// POST /cart/remove/:product
func RemoveFromCart(c *gin.Context) {
	item, ok := cartItem(c)
	if !ok {
		return
	}

	customer, err := resolveCustomer(c, false)
	if errors.Is(err, identity.ErrNoIdentity) {
		c.Redirect(http.StatusFound, "/store")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	if err := cart.RemoveItem(conn(c), customer, item); err != nil {
		fail(c, err)
		return
	}

	order, err := cart.Load(conn(c), customer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": newOrderView(order)})
}

// GET /cart
func ViewCart(c *gin.Context) {
	customer, err := resolveCustomer(c, false)
	if errors.Is(err, identity.ErrNoIdentity) {
		c.JSON(http.StatusOK, gin.H{"customer_exists": false, "order": nil})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	order, err := cart.Load(conn(c), customer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_exists": true, "order": newOrderView(order)})
}

// GET /checkout
func CheckoutPage(c *gin.Context) {
	customer, err := resolveCustomer(c, false)
	if errors.Is(err, identity.ErrNoIdentity) {
		c.Redirect(http.StatusFound, "/store")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	order, err := cart.Load(conn(c), customer)
	if err != nil {
		fail(c, err)
		return
	}

	var addresses []models.Address
	if err := conn(c).Where("customer_id = ?", customer.ID).Order("id").Find(&addresses).Error; err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":         newOrderView(order),
		"addresses":     addresses,
		"authenticated": identityOf(c).Authenticated(),
		"errors":        []string{},
	})
}

// POST /checkout/:order
func SubmitCheckout(c *gin.Context) {
	orderID, ok := parseID(c.Param("order"))
	if !ok {
		fail(c, checkout.ErrOrderNotFound)
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := resolveCustomer(c, false)
	if errors.Is(err, identity.ErrNoIdentity) {
		c.Redirect(http.StatusFound, "/store")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	who := checkout.Requester{Customer: customer, Authenticated: identityOf(c).Authenticated()}
	res, err := opts.Checkout.Checkout(c.Request.Context(), conn(c), who, checkout.Request{
		OrderID:        orderID,
		Total:          req.Total,
		AddressID:      req.Address,
		Email:          strings.TrimSpace(req.Email),
		IdempotencyKey: strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	})

	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		opts.Metrics.CheckoutOutcome("invalid")
		addresses := verr.Addresses
		if addresses == nil {
			addresses = []models.Address{}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors":    verr.Codes,
			"order":     newOrderView(verr.Order),
			"addresses": addresses,
		})
		return
	case err != nil:
		if errors.Is(err, payment.ErrGateway) {
			opts.Metrics.CheckoutOutcome("gateway_error")
		}
		fail(c, err)
		return
	}

	if res.Replayed {
		opts.Metrics.CheckoutOutcome("replayed")
	} else {
		opts.Metrics.CheckoutOutcome("redirected")
	}
	c.Redirect(http.StatusSeeOther, res.Payment.Link)
}

// GET /payments/callback
func PaymentCallback(c *gin.Context) {
	out, err := opts.Payments.HandleCallback(c.Request.Context(), conn(c), payment.Callback{
		Status:       c.Query("status"),
		PreferenceID: c.Query("preference_id"),
		Order:        c.Query("order"),
		Signature:    c.Query("sig"),
	})
	if err != nil {
		opts.Metrics.PaymentCallback("rejected")
		fail(c, err)
		return
	}

	if !out.Approved {
		opts.Metrics.PaymentCallback("declined")
		c.Redirect(http.StatusFound, "/checkout")
		return
	}
	if out.Unmatched {
		opts.Metrics.PaymentCallback("unmatched")
		c.Redirect(http.StatusFound, "/checkout")
		return
	}
	if out.Replayed {
		opts.Metrics.PaymentCallback("replayed")
	} else {
		opts.Metrics.PaymentCallback(payment.StatusApproved)
	}
	if auth.UserID(c) != nil {
		c.Redirect(http.StatusFound, "/account/orders")
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/orders/%d/approved", out.Order.ID))
}

// GET /orders/:id/approved
func OrderApproved(c *gin.Context) {
	orderID, ok := parseID(c.Param("id"))
	if !ok {
		fail(c, cart.ErrOrderNotFound)
		return
	}

	order, err := cart.LoadOrder(conn(c), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	if !order.Finalized {
		fail(c, cart.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": newOrderView(order)})
}
