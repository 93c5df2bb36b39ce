package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "evmapp/internal/errors"
	"evmapp/internal/external"
	"evmapp/internal/models"
	"evmapp/internal/service"
)

// stubPaymentStore drives the confirmation endpoint without a database.
type stubPaymentStore struct {
	orders      map[string]bool // order id -> already settled
	finalized   []string
	finalizeErr error
}

func (s *stubPaymentStore) Finalize(ctx context.Context, orderID, paymentID, method string, raw []byte) (bool, int64, error) {
	if s.finalizeErr != nil {
		return false, 0, s.finalizeErr
	}
	settled, ok := s.orders[orderID]
	if !ok {
		return false, 0, apperrors.ErrOrderNotFound
	}
	if settled {
		return false, 0, nil
	}
	s.orders[orderID] = true
	s.finalized = append(s.finalized, orderID)
	return true, 1, nil
}

func (s *stubPaymentStore) MarkFailed(ctx context.Context, orderID string, raw []byte) error {
	return nil
}

func (s *stubPaymentStore) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return nil, nil
}

func (s *stubPaymentStore) List(ctx context.Context, status string) ([]models.Payment, error) {
	return nil, nil
}

type stubBookingGetter struct{}

func (stubBookingGetter) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	return &models.Booking{ID: id, EventID: 1, TicketID: "AB12C"}, nil
}

type stubGateway struct {
	sigOK     bool
	webhookOK bool
}

func (g stubGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*external.OrderResult, error) {
	return nil, nil
}
func (g stubGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.sigOK
}
func (g stubGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return g.webhookOK
}

type noopPublisher struct{}

func (noopPublisher) Publish(subject string, data interface{}) error { return nil }

func setupPaymentRouter(store *stubPaymentStore, gateway stubGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"status": "error", "reason": apperrors.ReasonInvalidMethod})
	})

	paymentService := service.NewPaymentService(store, stubBookingGetter{}, gateway, noopPublisher{})
	h := NewHandlers(&service.Services{Payments: paymentService}, nil, nil)

	payments := r.Group("/api/payments")
	payments.POST("/confirm", h.ConfirmPayment)
	payments.POST("/webhook", h.PaymentWebhook)

	return r
}

func confirmRequest(t *testing.T, r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("POST", "/api/payments/confirm", bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorReason(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
	return resp["reason"]
}

func TestConfirmPaymentOK(t *testing.T) {
	store := &stubPaymentStore{orders: map[string]bool{"order_1": false}}
	r := setupPaymentRouter(store, stubGateway{sigOK: true})

	body, _ := json.Marshal(models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	})
	w := confirmRequest(t, r, body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"order_1"}, store.finalized)
}

func TestConfirmPaymentInvalidJSON(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentStore{orders: map[string]bool{}}, stubGateway{sigOK: true})

	w := confirmRequest(t, r, []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ReasonInvalidJSON, errorReason(t, w))
}

func TestConfirmPaymentMissingFields(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentStore{orders: map[string]bool{}}, stubGateway{sigOK: true})

	body, _ := json.Marshal(models.ConfirmPaymentRequest{
		RazorpayOrderID: "order_1",
	})
	w := confirmRequest(t, r, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ReasonMissingFields, errorReason(t, w))
}

func TestConfirmPaymentBadSignature(t *testing.T) {
	store := &stubPaymentStore{orders: map[string]bool{"order_1": false}}
	r := setupPaymentRouter(store, stubGateway{sigOK: false})

	body, _ := json.Marshal(models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "tampered",
	})
	w := confirmRequest(t, r, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ReasonSignatureMismatch, errorReason(t, w))
	assert.Empty(t, store.finalized, "failed verification must not settle anything")
}

func TestConfirmPaymentOrderNotFound(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentStore{orders: map[string]bool{}}, stubGateway{sigOK: true})

	body, _ := json.Marshal(models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_missing",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	})
	w := confirmRequest(t, r, body)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ReasonOrderNotFound, errorReason(t, w))
}

func TestConfirmPaymentWrongMethod(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentStore{orders: map[string]bool{}}, stubGateway{sigOK: true})

	req, _ := http.NewRequest("GET", "/api/payments/confirm", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, apperrors.ReasonInvalidMethod, errorReason(t, w))
}

func TestWebhookOK(t *testing.T) {
	store := &stubPaymentStore{orders: map[string]bool{"order_1": false}}
	r := setupPaymentRouter(store, stubGateway{webhookOK: true})

	var event models.WebhookEvent
	event.Event = "payment.captured"
	event.Payload.Payment.Entity.ID = "pay_1"
	event.Payload.Payment.Entity.OrderID = "order_1"
	body, _ := json.Marshal(event)

	req, _ := http.NewRequest("POST", "/api/payments/webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", "sig")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"order_1"}, store.finalized)
}

func TestWebhookMissingSignatureHeader(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentStore{orders: map[string]bool{}}, stubGateway{webhookOK: true})

	req, _ := http.NewRequest("POST", "/api/payments/webhook", bytes.NewBufferString("{}"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ReasonMissingFields, errorReason(t, w))
}

func TestWebhookBadSignature(t *testing.T) {
	store := &stubPaymentStore{orders: map[string]bool{"order_1": false}}
	r := setupPaymentRouter(store, stubGateway{webhookOK: false})

	req, _ := http.NewRequest("POST", "/api/payments/webhook", bytes.NewBufferString("{}"))
	req.Header.Set("X-Razorpay-Signature", "bad")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ReasonSignatureMismatch, errorReason(t, w))
	assert.Empty(t, store.finalized)
}

func TestWebhookMalformedPayloadRejected(t *testing.T) {
	store := &stubPaymentStore{orders: map[string]bool{"order_1": false}}
	r := setupPaymentRouter(store, stubGateway{webhookOK: true})

	req, _ := http.NewRequest("POST", "/api/payments/webhook", bytes.NewBufferString("{not json"))
	req.Header.Set("X-Razorpay-Signature", "sig")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ReasonInvalidJSON, errorReason(t, w))
	assert.Empty(t, store.finalized)
}

func TestWebhookStorageFailureReturns500(t *testing.T) {
	// A transient storage error must surface as a 5xx so the gateway
	// redelivers the event instead of treating it as consumed.
	store := &stubPaymentStore{
		orders:      map[string]bool{"order_1": false},
		finalizeErr: errors.New("connection refused"),
	}
	r := setupPaymentRouter(store, stubGateway{webhookOK: true})

	var event models.WebhookEvent
	event.Event = "payment.captured"
	event.Payload.Payment.Entity.ID = "pay_1"
	event.Payload.Payment.Entity.OrderID = "order_1"
	body, _ := json.Marshal(event)

	req, _ := http.NewRequest("POST", "/api/payments/webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", "sig")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.finalized)
}

func TestWebhookUnknownOrderStill200(t *testing.T) {
	r := setupPaymentRouter(&stubPaymentStore{orders: map[string]bool{}}, stubGateway{webhookOK: true})

	var event models.WebhookEvent
	event.Event = "payment.captured"
	event.Payload.Payment.Entity.ID = "pay_1"
	event.Payload.Payment.Entity.OrderID = "order_unknown"
	body, _ := json.Marshal(event)

	req, _ := http.NewRequest("POST", "/api/payments/webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", "sig")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
