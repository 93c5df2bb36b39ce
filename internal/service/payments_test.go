package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evmapp/internal/errors"
	"evmapp/internal/external"
	"evmapp/internal/models"
)

// memPaymentStore reproduces the write-once capture semantics of the real
// repository against in-memory state, so settlement behavior can be tested
// without a database.
type memPaymentStore struct {
	mu       sync.Mutex
	payments map[string]*models.Payment // keyed by gateway order id
	bookings map[int64]*models.Booking
	captures int
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{
		payments: make(map[string]*models.Payment),
		bookings: make(map[int64]*models.Booking),
	}
}

func (m *memPaymentStore) addOrder(orderID string, bookingID int64) {
	m.payments[orderID] = &models.Payment{
		BookingID:       bookingID,
		RazorpayOrderID: orderID,
		Status:          models.PaymentStatusCreated,
		Amount:          decimal.NewFromInt(1000),
		Currency:        "INR",
	}
	m.bookings[bookingID] = &models.Booking{ID: bookingID, EventID: 1, TicketID: "AB12C"}
}

func (m *memPaymentStore) Finalize(ctx context.Context, orderID, paymentID, method string, raw []byte) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[orderID]
	if !ok {
		return false, 0, errors.ErrOrderNotFound
	}
	if p.RazorpayPaymentID != nil || p.Status != models.PaymentStatusCreated {
		return false, 0, nil
	}

	pid := paymentID
	p.RazorpayPaymentID = &pid
	p.Status = models.PaymentStatusCaptured
	if method != "" {
		p.Method = &method
	}
	m.bookings[p.BookingID].Paid = true
	m.bookings[p.BookingID].PaymentID = paymentID
	m.captures++
	return true, p.BookingID, nil
}

func (m *memPaymentStore) MarkFailed(ctx context.Context, orderID string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[orderID]
	if !ok || p.Status == models.PaymentStatusCaptured {
		return nil
	}
	p.Status = models.PaymentStatusFailed
	return nil
}

func (m *memPaymentStore) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[orderID], nil
}

func (m *memPaymentStore) List(ctx context.Context, status string) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPaymentStore) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id], nil
}

type fakeGateway struct {
	paymentSigOK bool
	webhookSigOK bool
	orderErr     error
	nextOrderID  string
	orderCalls   int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*external.OrderResult, error) {
	g.orderCalls++
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	return &external.OrderResult{
		OrderID:  g.nextOrderID,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.paymentSigOK
}

func (g *fakeGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return g.webhookSigOK
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

func webhookBody(t *testing.T, event, orderID, paymentID, method string) []byte {
	t.Helper()
	var w models.WebhookEvent
	w.Event = event
	w.Payload.Payment.Entity.ID = paymentID
	w.Payload.Payment.Entity.OrderID = orderID
	w.Payload.Payment.Entity.Method = method
	body, err := json.Marshal(w)
	require.NoError(t, err)
	return body
}

func TestConfirmCapturesPayment(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{paymentSigOK: true}, publisher)

	err := svc.Confirm(context.Background(), &models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	})
	require.NoError(t, err)

	p := store.payments["order_1"]
	assert.Equal(t, models.PaymentStatusCaptured, p.Status)
	require.NotNil(t, p.RazorpayPaymentID)
	assert.Equal(t, "pay_1", *p.RazorpayPaymentID)
	assert.True(t, store.bookings[10].Paid)
	assert.Equal(t, 1, publisher.count(models.EventBookingConfirmed))
}

func TestConfirmIsIdempotent(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{paymentSigOK: true}, publisher)

	req := &models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	}
	require.NoError(t, svc.Confirm(context.Background(), req))
	require.NoError(t, svc.Confirm(context.Background(), req))
	require.NoError(t, svc.Confirm(context.Background(), req))

	assert.Equal(t, 1, store.captures)
	assert.Equal(t, 1, publisher.count(models.EventBookingConfirmed))
}

func TestConfirmConcurrentSingleCapture(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{paymentSigOK: true}, publisher)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- svc.Confirm(context.Background(), &models.ConfirmPaymentRequest{
				RazorpayOrderID:   "order_1",
				RazorpayPaymentID: fmt.Sprintf("pay_%d", n),
				RazorpaySignature: "sig",
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.captures, "exactly one worker should win the capture")
	assert.Equal(t, 1, publisher.count(models.EventBookingConfirmed))
}

func TestConfirmSignatureMismatchMutatesNothing(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{paymentSigOK: false}, publisher)

	err := svc.Confirm(context.Background(), &models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "bad",
	})
	require.ErrorIs(t, err, errors.ErrSignatureMismatch)

	p := store.payments["order_1"]
	assert.Equal(t, models.PaymentStatusCreated, p.Status)
	assert.Nil(t, p.RazorpayPaymentID)
	assert.False(t, store.bookings[10].Paid)
	assert.Empty(t, publisher.subjects)
}

func TestConfirmUnknownOrder(t *testing.T) {
	store := newMemPaymentStore()
	svc := NewPaymentService(store, store, &fakeGateway{paymentSigOK: true}, &recordingPublisher{})

	err := svc.Confirm(context.Background(), &models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_missing",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	})
	require.ErrorIs(t, err, errors.ErrOrderNotFound)
}

func TestWebhookCapturedSettlesPayment(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{webhookSigOK: true}, publisher)

	body := webhookBody(t, "payment.captured", "order_1", "pay_1", "upi")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))

	p := store.payments["order_1"]
	assert.Equal(t, models.PaymentStatusCaptured, p.Status)
	require.NotNil(t, p.Method)
	assert.Equal(t, "upi", *p.Method)
	assert.True(t, store.bookings[10].Paid)
	assert.Equal(t, 1, publisher.count(models.EventBookingConfirmed))
}

func TestWebhookFailedDoesNotOverwriteCaptured(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{paymentSigOK: true, webhookSigOK: true}, publisher)

	require.NoError(t, svc.Confirm(context.Background(), &models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	}))

	body := webhookBody(t, "payment.failed", "order_1", "pay_1", "")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))

	assert.Equal(t, models.PaymentStatusCaptured, store.payments["order_1"].Status)
	assert.True(t, store.bookings[10].Paid)
}

func TestConfirmDoesNotReviveFailedPayment(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{paymentSigOK: true, webhookSigOK: true}, publisher)

	body := webhookBody(t, "payment.failed", "order_1", "pay_1", "")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))

	// A late confirmation for an order the gateway already reported failed
	// must not move it out of the terminal state.
	require.NoError(t, svc.Confirm(context.Background(), &models.ConfirmPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	}))

	p := store.payments["order_1"]
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	assert.Nil(t, p.RazorpayPaymentID)
	assert.False(t, store.bookings[10].Paid)
	assert.Zero(t, store.captures)
	assert.Zero(t, publisher.count(models.EventBookingConfirmed))
}

func TestWebhookFailedMarksPayment(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	publisher := &recordingPublisher{}
	svc := NewPaymentService(store, store, &fakeGateway{webhookSigOK: true}, publisher)

	body := webhookBody(t, "payment.failed", "order_1", "pay_1", "")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))

	assert.Equal(t, models.PaymentStatusFailed, store.payments["order_1"].Status)
	assert.False(t, store.bookings[10].Paid)
	assert.Equal(t, 1, publisher.count(models.EventPaymentFailed))
}

func TestWebhookUnknownOrderAcknowledged(t *testing.T) {
	store := newMemPaymentStore()
	svc := NewPaymentService(store, store, &fakeGateway{webhookSigOK: true}, &recordingPublisher{})

	body := webhookBody(t, "payment.captured", "order_missing", "pay_1", "card")
	assert.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))
}

func TestWebhookBadSignatureRejected(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	svc := NewPaymentService(store, store, &fakeGateway{webhookSigOK: false}, &recordingPublisher{})

	body := webhookBody(t, "payment.captured", "order_1", "pay_1", "card")
	err := svc.HandleWebhook(context.Background(), body, "sig")
	require.ErrorIs(t, err, errors.ErrSignatureMismatch)
	assert.Equal(t, models.PaymentStatusCreated, store.payments["order_1"].Status)
}

func TestWebhookIgnoresUnrelatedEvents(t *testing.T) {
	store := newMemPaymentStore()
	store.addOrder("order_1", 10)
	svc := NewPaymentService(store, store, &fakeGateway{webhookSigOK: true}, &recordingPublisher{})

	body := webhookBody(t, "refund.created", "order_1", "pay_1", "")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))
	assert.Equal(t, models.PaymentStatusCreated, store.payments["order_1"].Status)
}
