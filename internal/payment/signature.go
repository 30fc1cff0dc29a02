package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
)

// Signer binds the callback URL of a payment to its order so the redirect
// back from the gateway cannot be forged for another order.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) Signer {
	return Signer{secret: []byte(secret)}
}

func (s Signer) Sign(orderID uint) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("order:" + strconv.FormatUint(uint64(orderID), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s Signer) Verify(orderID uint, sig string) bool {
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(s.Sign(orderID))
	return hmac.Equal(got, want)
}

// CallbackURL appends the order and its signature to base. The gateway adds
// status and preference_id when it redirects.
func (s Signer) CallbackURL(base string, orderID uint) string {
	q := url.Values{}
	q.Set("order", strconv.FormatUint(uint64(orderID), 10))
	q.Set("sig", s.Sign(orderID))
	return base + "?" + q.Encode()
}
