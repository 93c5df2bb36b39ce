package external

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RazorpayClient talks to the Razorpay REST API. Order creation, payment
// signature verification and webhook signature verification are the only
// calls the core needs.
type RazorpayClient struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	httpClient    *http.Client
}

type RazorpayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

type orderCreateRequest struct {
	Amount         int64  `json:"amount"` // minor currency units
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// OrderResult carries the fields of an order-create response the core
// reads, plus the raw body for the audit trail.
type OrderResult struct {
	OrderID  string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	Raw      []byte `json:"-"`
}

func NewRazorpayClient(cfg RazorpayConfig) *RazorpayClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}

	return &RazorpayClient{
		baseURL:       cfg.BaseURL,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateOrder registers an order with the gateway. amount is in minor
// currency units (paise for INR).
func (rc *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*OrderResult, error) {
	reqBody := orderCreateRequest{
		Amount:         amount,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.baseURL+"/v1/orders", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.SetBasicAuth(rc.keyID, rc.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order creation returned status %d: %s", resp.StatusCode, raw)
	}

	var result OrderResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	if result.OrderID == "" {
		return nil, fmt.Errorf("order creation response missing order id")
	}
	result.Raw = raw

	return &result, nil
}

// VerifyPaymentSignature checks the checkout callback signature, an
// HMAC-SHA256 over "order_id|payment_id" keyed with the API secret.
func (rc *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	expected := hmacSHA256([]byte(orderID+"|"+paymentID), rc.keySecret)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// VerifyWebhookSignature checks a webhook delivery against the separate
// webhook secret. The raw body must be verified before any parsing.
func (rc *RazorpayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	expected := hmacSHA256(body, rc.webhookSecret)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func hmacSHA256(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
