package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"evmapp/internal/errors"
	"evmapp/internal/logger"
	"evmapp/internal/middleware"
	"evmapp/internal/models"
)

// paymentStore is the persistence surface for payment settlement.
// Implemented by repository.PaymentRepository; faked in tests.
type paymentStore interface {
	Finalize(ctx context.Context, orderID, paymentID, method string, raw []byte) (captured bool, bookingID int64, err error)
	MarkFailed(ctx context.Context, orderID string, raw []byte) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	List(ctx context.Context, status string) ([]models.Payment, error)
}

type bookingGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
}

type PaymentService struct {
	payments  paymentStore
	bookings  bookingGetter
	gateway   Gateway
	publisher Publisher
}

func NewPaymentService(payments paymentStore, bookings bookingGetter, gateway Gateway, publisher Publisher) *PaymentService {
	return &PaymentService{
		payments:  payments,
		bookings:  bookings,
		gateway:   gateway,
		publisher: publisher,
	}
}

// Confirm settles a payment reported by the checkout client. The signature
// is verified before anything is touched; a mismatch mutates nothing. A
// repeat confirmation of an already-settled order is a no-op success.
func (s *PaymentService) Confirm(ctx context.Context, req *models.ConfirmPaymentRequest) error {
	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return errors.ErrSignatureMismatch
	}

	captured, bookingID, err := s.payments.Finalize(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, "", nil)
	if err != nil {
		return err
	}

	if captured {
		middleware.CountPaymentEvent("captured")
		s.publishConfirmed(ctx, bookingID)
	} else {
		middleware.CountPaymentEvent("duplicate")
	}
	return nil
}

// HandleWebhook processes a gateway notification. The body signature is
// verified first; after that every outcome is an acknowledgement, including
// notifications for orders this system never issued.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return errors.ErrSignatureMismatch
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}

	entity := event.Payload.Payment.Entity

	switch event.Event {
	case "payment.captured":
		captured, bookingID, err := s.payments.Finalize(ctx, entity.OrderID, entity.ID, entity.Method, body)
		if err == errors.ErrOrderNotFound {
			logger.WithContext(ctx).Warn("Webhook for unknown order",
				"order_id", entity.OrderID, "event", event.Event)
			return nil
		}
		if err != nil {
			return err
		}
		if captured {
			middleware.CountPaymentEvent("captured")
			s.publishConfirmed(ctx, bookingID)
		} else {
			middleware.CountPaymentEvent("duplicate")
		}

	case "payment.failed":
		if err := s.payments.MarkFailed(ctx, entity.OrderID, body); err != nil {
			return err
		}
		middleware.CountPaymentEvent("failed")
		s.publishFailed(ctx, entity.OrderID)

	default:
		logger.WithContext(ctx).Debug("Ignoring webhook event", "event", event.Event)
	}

	return nil
}

func (s *PaymentService) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	payment, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, errors.ErrOrderNotFound
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, status string) ([]models.Payment, error) {
	payments, err := s.payments.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) publishConfirmed(ctx context.Context, bookingID int64) {
	event := models.BookingConfirmedEvent{
		BookingID: bookingID,
		Timestamp: time.Now(),
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err == nil && booking != nil {
		event.EventID = booking.EventID
		event.TicketID = booking.TicketID
	}

	if err := s.publisher.Publish(models.EventBookingConfirmed, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking confirmed event",
			"booking_id", bookingID, "error", err)
	}
}

func (s *PaymentService) publishFailed(ctx context.Context, orderID string) {
	event := models.PaymentFailedEvent{
		OrderID:   orderID,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.EventPaymentFailed, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment failed event",
			"order_id", orderID, "error", err)
	}
}
