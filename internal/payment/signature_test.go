package payment_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brenpaiva/ecommerce-store/internal/payment"
)

func TestSigner(t *testing.T) {
	s := payment.NewSigner("secret")

	sig := s.Sign(42)
	assert.Len(t, sig, 64)
	assert.True(t, s.Verify(42, sig))
	assert.False(t, s.Verify(43, sig))
	assert.False(t, s.Verify(42, "not-hex"))
	assert.False(t, payment.NewSigner("other").Verify(42, sig))

	raw := s.CallbackURL("https://loja.example.com/payments/callback", 42)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/payments/callback", u.Path)
	assert.Equal(t, "42", u.Query().Get("order"))
	assert.Equal(t, sig, u.Query().Get("sig"))
}
