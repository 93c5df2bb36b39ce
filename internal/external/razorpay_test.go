package external

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	client := NewRazorpayClient(RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
	})

	valid := sign("order_1|pay_1", "secret")
	assert.True(t, client.VerifyPaymentSignature("order_1", "pay_1", valid))

	assert.False(t, client.VerifyPaymentSignature("order_1", "pay_1", valid+"00"))
	assert.False(t, client.VerifyPaymentSignature("order_1", "pay_2", valid))
	assert.False(t, client.VerifyPaymentSignature("order_1", "pay_1", sign("order_1|pay_1", "wrong")))
	assert.False(t, client.VerifyPaymentSignature("order_1", "pay_1", ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := NewRazorpayClient(RazorpayConfig{
		KeySecret:     "secret",
		WebhookSecret: "webhook-secret",
	})

	body := []byte(`{"event":"payment.captured"}`)
	valid := sign(string(body), "webhook-secret")
	assert.True(t, client.VerifyWebhookSignature(body, valid))

	assert.False(t, client.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid))
	// The webhook secret is distinct from the API secret
	assert.False(t, client.VerifyWebhookSignature(body, sign(string(body), "secret")))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_abc","amount":100000,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	}))
	defer srv.Close()

	client := NewRazorpayClient(RazorpayConfig{
		BaseURL:   srv.URL,
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
	})

	order, err := client.CreateOrder(context.Background(), 100000, "INR", "rcpt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.OrderID)
	assert.Equal(t, int64(100000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.NotEmpty(t, order.Raw)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRazorpayClient(RazorpayConfig{BaseURL: srv.URL})

	_, err := client.CreateOrder(context.Background(), 1000, "INR", "rcpt_1")
	assert.Error(t, err)
}
