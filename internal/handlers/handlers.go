package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/auth"
	"github.com/brenpaiva/ecommerce-store/internal/cart"
	"github.com/brenpaiva/ecommerce-store/internal/catalog"
	"github.com/brenpaiva/ecommerce-store/internal/checkout"
	"github.com/brenpaiva/ecommerce-store/internal/db"
	"github.com/brenpaiva/ecommerce-store/internal/identity"
	"github.com/brenpaiva/ecommerce-store/internal/images"
	"github.com/brenpaiva/ecommerce-store/internal/metrics"
	"github.com/brenpaiva/ecommerce-store/internal/models"
	"github.com/brenpaiva/ecommerce-store/internal/payment"
	"github.com/brenpaiva/ecommerce-store/internal/reporting"
)

// Options are the collaborators the handlers use besides db.DB.
type Options struct {
	Checkout   *checkout.Service
	Payments   *payment.Processor
	Images     images.URLer
	Metrics    *metrics.ServerMetrics
	StaffGroup string
}

var opts = Options{Images: images.Static{}, StaffGroup: "equipe"}

func Configure(o Options) {
	if o.Images == nil {
		o.Images = images.Static{}
	}
	if o.StaffGroup == "" {
		o.StaffGroup = "equipe"
	}
	opts = o
}

func RegisterRoutes(r gin.IRouter) {
	r.GET("/", Home)
	r.GET("/categories", ListCategories)

	r.GET("/store", Store)
	r.POST("/store", Store)
	r.GET("/store/:category", Store)
	r.POST("/store/:category", Store)
	r.GET("/products/:id", ShowProduct)
	r.GET("/products/:id/:color", ShowProduct)

	r.GET("/cart", ViewCart)
	r.POST("/cart/add/:product", AddToCart)
	r.POST("/cart/remove/:product", RemoveFromCart)

	r.GET("/checkout", CheckoutPage)
	r.POST("/checkout/:order", SubmitCheckout)
	r.GET("/payments/callback", PaymentCallback)
	r.GET("/orders/:id/approved", OrderApproved)
	r.POST("/addresses", AddAddress)

	account := r.Group("/account", auth.RequireAuth())
	{
		account.GET("", Account)
		account.POST("", UpdateAccount)
		account.GET("/orders", MyOrders)
	}

	admin := r.Group("/admin", auth.RequireAuth())
	{
		admin.GET("", auth.RequireStaff(opts.StaffGroup, "/"), AdminSummary)
		admin.GET("/export/:report", auth.RequireStaff(opts.StaffGroup, "/admin"), ExportReport)
	}
}

func conn(c *gin.Context) *gorm.DB {
	return db.DB.WithContext(c.Request.Context())
}

func identityOf(c *gin.Context) identity.Identity {
	token, _ := c.Cookie(identity.SessionCookie)
	return identity.Identity{UserID: auth.UserID(c), SessionToken: token}
}

// resolveCustomer maps the caller to a Customer and issues the id_sessao
// cookie when a new anonymous session was started.
func resolveCustomer(c *gin.Context, create bool) (*models.Customer, error) {
	res, err := identity.Resolve(conn(c), identityOf(c), create)
	if err != nil {
		return nil, err
	}
	if res.NewSession {
		c.SetCookie(identity.SessionCookie, res.SessionToken, int(identity.SessionMaxAge.Seconds()), "/", "", false, true)
	}
	return res.Customer, nil
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// fail writes err with the status its kind maps to.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cart.ErrStockItemNotFound),
		errors.Is(err, cart.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrColorNotFound),
		errors.Is(err, checkout.ErrOrderNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, reporting.ErrUnknownReport):
		status = http.StatusNotFound
	case errors.Is(err, checkout.ErrOrderFinalized),
		errors.Is(err, checkout.ErrIdempotencyKeyReuse):
		status = http.StatusConflict
	case errors.Is(err, payment.ErrInvalidSignature):
		status = http.StatusForbidden
	case errors.Is(err, payment.ErrGateway):
		status = http.StatusBadGateway
	case errors.Is(err, identity.ErrUserNotFound):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
