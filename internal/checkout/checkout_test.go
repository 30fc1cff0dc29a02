package checkout_test

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/cart"
	"github.com/brenpaiva/ecommerce-store/internal/checkout"
	"github.com/brenpaiva/ecommerce-store/internal/dbtest"
	"github.com/brenpaiva/ecommerce-store/internal/models"
	"github.com/brenpaiva/ecommerce-store/internal/payment"
)

type fakeGateway struct {
	calls       int
	items       []payment.LineItem
	callbackURL string
	err         error
}

func (g *fakeGateway) CreatePayment(_ context.Context, items []payment.LineItem, callbackURL string) (*payment.Link, error) {
	g.calls++
	g.items = items
	g.callbackURL = callbackURL
	if g.err != nil {
		return nil, g.err
	}
	id := "pref-" + strconv.Itoa(g.calls)
	return &payment.Link{URL: "https://gateway.example.com/pay/" + id, ID: id}, nil
}

var fixed = time.Unix(1760000000, 0)

func newService(gw payment.Gateway) *checkout.Service {
	return &checkout.Service{
		Gateway:      gw,
		Signer:       payment.NewSigner("secret"),
		CallbackBase: "https://loja.example.com/payments/callback",
		Now:          func() time.Time { return fixed },
	}
}

// fillCart builds the 25.50 cart: 2 × basic shirt (10.00) + 1 × printed shirt (5.50).
func fillCart(t *testing.T, testDB *gorm.DB, catalog *dbtest.Catalog, customer *models.Customer) *models.Order {
	t.Helper()
	basic := cart.Item{ProductID: catalog.BasicShirt.ID, Size: "M", ColorID: &catalog.Black.ID}
	printed := cart.Item{ProductID: catalog.PrintedShirt.ID, Size: "P", ColorID: &catalog.White.ID}
	for _, it := range []cart.Item{basic, basic, printed} {
		_, err := cart.AddItem(testDB, customer, it)
		require.NoError(t, err)
	}
	order, err := cart.Load(testDB, customer)
	require.NoError(t, err)
	require.Equal(t, "25.50", order.Total().StringFixed(2))
	return order
}

func newGuest(t *testing.T, testDB *gorm.DB, token string) *models.Customer {
	t.Helper()
	c := models.Customer{SessionID: &token}
	require.NoError(t, testDB.Create(&c).Error)
	return &c
}

func addAddress(t *testing.T, testDB *gorm.DB, customer *models.Customer) models.Address {
	t.Helper()
	a := models.Address{CustomerID: customer.ID, Street: "Rua A", Number: 10, City: "Sao Paulo", State: "SP", PostalCode: "01000-000"}
	require.NoError(t, testDB.Create(&a).Error)
	return a
}

func idStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestParseTotal(t *testing.T) {
	d, err := checkout.ParseTotal("25,50")
	require.NoError(t, err)
	assert.Equal(t, "25.5", d.String())

	_, err = checkout.ParseTotal("abc")
	assert.Error(t, err)
}

func TestValidEmail(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, checkout.ValidEmail("ana@example.com"))
			assert.False(t, checkout.ValidEmail("ana"))
			assert.False(t, checkout.ValidEmail(""))
		}()
	}
	wg.Wait()
}

func TestCheckoutValidation(t *testing.T) {
	testDB := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, testDB)
	gw := &fakeGateway{}
	svc := newService(gw)
	ctx := context.Background()

	guest := newGuest(t, testDB, "tok-guest")
	order := fillCart(t, testDB, catalog, guest)
	address := addAddress(t, testDB, guest)
	who := checkout.Requester{Customer: guest}

	t.Run("wrong total is a price error", func(t *testing.T) {
		_, err := svc.Checkout(ctx, testDB, who, checkout.Request{OrderID: order.ID, Total: "25.00", AddressID: idStr(address.ID), Email: "guest@example.com"})

		var verr *checkout.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{checkout.CodePrice}, verr.Codes)
		assert.Equal(t, []models.Address{address}, verr.Addresses)
		assert.Zero(t, gw.calls)
	})

	t.Run("every failing check is reported", func(t *testing.T) {
		_, err := svc.Checkout(ctx, testDB, who, checkout.Request{OrderID: order.ID, Total: "1,00", Email: "not-an-email"})

		var verr *checkout.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{checkout.CodePrice, checkout.CodeAddress, checkout.CodeEmail}, verr.Codes)
	})

	t.Run("someone else's address is an address error", func(t *testing.T) {
		stranger := newGuest(t, testDB, "tok-stranger")
		theirs := addAddress(t, testDB, stranger)

		_, err := svc.Checkout(ctx, testDB, who, checkout.Request{OrderID: order.ID, Total: "25,50", AddressID: idStr(theirs.ID), Email: "guest@example.com"})

		var verr *checkout.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{checkout.CodeAddress}, verr.Codes)
	})

	t.Run("transaction code is stored even on failure", func(t *testing.T) {
		var stored models.Order
		require.NoError(t, testDB.First(&stored, order.ID).Error)
		assert.Equal(t, idStr(order.ID)+"-1760000000", stored.TransactionCode)
		assert.Equal(t, models.OrderStatusDraft, stored.Status)
	})

	t.Run("someone else's order is not found", func(t *testing.T) {
		stranger := newGuest(t, testDB, "tok-other")
		_, err := svc.Checkout(ctx, testDB, checkout.Requester{Customer: stranger}, checkout.Request{OrderID: order.ID, Total: "25,50"})
		assert.ErrorIs(t, err, checkout.ErrOrderNotFound)

		_, err = svc.Checkout(ctx, testDB, who, checkout.Request{OrderID: 9999})
		assert.ErrorIs(t, err, checkout.ErrOrderNotFound)
	})
}

func TestCheckoutGuestNewEmail(t *testing.T) {
	testDB := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, testDB)
	gw := &fakeGateway{}
	svc := newService(gw)

	guest := newGuest(t, testDB, "tok-guest")
	order := fillCart(t, testDB, catalog, guest)
	address := addAddress(t, testDB, guest)

	res, err := svc.Checkout(context.Background(), testDB, checkout.Requester{Customer: guest},
		checkout.Request{OrderID: order.ID, Total: "25,50", AddressID: idStr(address.ID), Email: "new@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "pref-1", res.Payment.GatewayID)
	assert.Equal(t, "https://gateway.example.com/pay/pref-1", res.Payment.Link)
	assert.False(t, res.Payment.Approved)
	assert.Equal(t, "25.50", res.Payment.Amount.StringFixed(2))

	var stored models.Customer
	require.NoError(t, testDB.First(&stored, guest.ID).Error)
	assert.Equal(t, "new@example.com", stored.Email)

	var storedOrder models.Order
	require.NoError(t, testDB.First(&storedOrder, order.ID).Error)
	assert.Equal(t, guest.ID, storedOrder.CustomerID)
	assert.Equal(t, models.OrderStatusPendingPayment, storedOrder.Status)
	assert.False(t, storedOrder.Finalized)
	require.NotNil(t, storedOrder.AddressID)
	assert.Equal(t, address.ID, *storedOrder.AddressID)

	require.Len(t, gw.items, 2)
	assert.Equal(t, 2, gw.items[0].Quantity)
	assert.Equal(t, "10.00", gw.items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "Camiseta Estampada, Tamanho: P, Cor: Branco", gw.items[1].Description)

	cb, err := url.Parse(gw.callbackURL)
	require.NoError(t, err)
	assert.Equal(t, idStr(order.ID), cb.Query().Get("order"))
	assert.True(t, payment.NewSigner("secret").Verify(order.ID, cb.Query().Get("sig")))

	var events int64
	testDB.Model(&models.OutboxEvent{}).Count(&events)
	assert.Equal(t, int64(1), events)
}

func TestCheckoutGuestKnownEmail(t *testing.T) {
	testDB := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, testDB)
	svc := newService(&fakeGateway{})

	known := models.Customer{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, testDB.Create(&known).Error)

	guest := newGuest(t, testDB, "tok-guest")
	order := fillCart(t, testDB, catalog, guest)
	address := addAddress(t, testDB, guest)

	_, err := svc.Checkout(context.Background(), testDB, checkout.Requester{Customer: guest},
		checkout.Request{OrderID: order.ID, Total: "25.50", AddressID: idStr(address.ID), Email: "ana@example.com"})
	require.NoError(t, err)

	var storedOrder models.Order
	require.NoError(t, testDB.First(&storedOrder, order.ID).Error)
	assert.Equal(t, known.ID, storedOrder.CustomerID)
	require.NotNil(t, storedOrder.CartOwnerID)
	assert.Equal(t, guest.ID, *storedOrder.CartOwnerID)

	var storedGuest models.Customer
	require.NoError(t, testDB.First(&storedGuest, guest.ID).Error)
	assert.Empty(t, storedGuest.Email)
}

func TestCheckoutAuthenticated(t *testing.T) {
	testDB := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, testDB)
	gw := &fakeGateway{}
	svc := newService(gw)
	ctx := context.Background()

	customer := models.Customer{Name: "Bia", Email: "bia@example.com"}
	require.NoError(t, testDB.Create(&customer).Error)
	order := fillCart(t, testDB, catalog, &customer)
	address := addAddress(t, testDB, &customer)
	who := checkout.Requester{Customer: &customer, Authenticated: true}
	req := checkout.Request{OrderID: order.ID, Total: "25.50", AddressID: idStr(address.ID), IdempotencyKey: "idem-1"}

	t.Run("no email needed", func(t *testing.T) {
		res, err := svc.Checkout(ctx, testDB, who, req)
		require.NoError(t, err)
		assert.False(t, res.Replayed)
		assert.Equal(t, 1, gw.calls)
	})

	t.Run("same idempotency key replays the payment", func(t *testing.T) {
		res, err := svc.Checkout(ctx, testDB, who, req)
		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, "pref-1", res.Payment.GatewayID)
		assert.Equal(t, 1, gw.calls)
	})

	t.Run("gateway failure propagates", func(t *testing.T) {
		gw.err = errors.New("timeout")
		defer func() { gw.err = nil }()

		retry := req
		retry.IdempotencyKey = ""
		_, err := svc.Checkout(ctx, testDB, who, retry)
		assert.ErrorIs(t, err, payment.ErrGateway)
	})

	t.Run("finalized order is rejected", func(t *testing.T) {
		require.NoError(t, testDB.Model(&models.Order{}).Where("id = ?", order.ID).Update("finalized", true).Error)

		retry := req
		retry.IdempotencyKey = ""
		_, err := svc.Checkout(ctx, testDB, who, retry)
		assert.ErrorIs(t, err, checkout.ErrOrderFinalized)
	})
}

func TestCheckoutGatewayFailureCommitsNothing(t *testing.T) {
	testDB := dbtest.Open(t)
	catalog := dbtest.SeedCatalog(t, testDB)
	gw := &fakeGateway{err: errors.New("timeout")}
	svc := newService(gw)

	guest := newGuest(t, testDB, "tok-guest")
	order := fillCart(t, testDB, catalog, guest)
	address := addAddress(t, testDB, guest)
	req := checkout.Request{OrderID: order.ID, Total: "25.50", AddressID: idStr(address.ID), Email: "new@example.com"}

	_, err := svc.Checkout(context.Background(), testDB, checkout.Requester{Customer: guest}, req)
	require.ErrorIs(t, err, payment.ErrGateway)
	assert.Equal(t, 1, gw.calls)

	var storedOrder models.Order
	require.NoError(t, testDB.First(&storedOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusDraft, storedOrder.Status)

	var storedGuest models.Customer
	require.NoError(t, testDB.First(&storedGuest, guest.ID).Error)
	assert.Empty(t, storedGuest.Email)

	var events, payments int64
	testDB.Model(&models.OutboxEvent{}).Count(&events)
	testDB.Model(&models.Payment{}).Count(&payments)
	assert.Zero(t, events)
	assert.Zero(t, payments)

	t.Run("retry after the gateway recovers", func(t *testing.T) {
		gw.err = nil
		res, err := svc.Checkout(context.Background(), testDB, checkout.Requester{Customer: guest}, req)
		require.NoError(t, err)
		assert.Equal(t, "pref-2", res.Payment.GatewayID)

		require.NoError(t, testDB.First(&storedOrder, order.ID).Error)
		assert.Equal(t, models.OrderStatusPendingPayment, storedOrder.Status)
		testDB.Model(&models.OutboxEvent{}).Count(&events)
		assert.Equal(t, int64(1), events)
	})
}
