package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"evmapp/internal/errors"
	"evmapp/internal/logger"
	"evmapp/internal/models"
	"evmapp/internal/repository"
)

// bookingStore is the persistence surface the booking flow needs. Implemented
// by repository.BookingRepository; faked in tests.
type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	CreateWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	List(ctx context.Context, eventID int64) ([]models.Booking, error)
	ExportParticipants(ctx context.Context, eventID int64) ([]repository.ParticipantRow, error)
}

type eventGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

type BookingService struct {
	bookings  bookingStore
	events    eventGetter
	gateway   Gateway
	publisher Publisher
}

func NewBookingService(bookings bookingStore, events eventGetter, gateway Gateway, publisher Publisher) *BookingService {
	return &BookingService{
		bookings:  bookings,
		events:    events,
		gateway:   gateway,
		publisher: publisher,
	}
}

// Create books tickets against an event. Free events produce a confirmed
// booking immediately. Paid events register a gateway order first and only
// then persist the booking with its pending payment, so a gateway failure
// leaves no local state.
func (s *BookingService) Create(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || !event.Status {
		return nil, errors.ErrEventNotFound
	}

	totalCost := event.EffectivePrice().Mul(decimal.NewFromInt(int64(req.NumberOfTickets)))

	booking := &models.Booking{
		EventID:         req.EventID,
		NumberOfTickets: req.NumberOfTickets,
		Name:            req.Name,
		ContactNumber:   req.ContactNumber,
		Email:           req.Email,
		TotalCost:       totalCost,
	}

	if event.FreeTicket || totalCost.IsZero() {
		booking.Paid = true
		if err := s.bookings.Create(ctx, booking); err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		s.publishConfirmed(ctx, booking)

		return &models.CreateBookingResponse{
			BookingID: booking.ID,
			TicketID:  booking.TicketID,
			TotalCost: totalCost.StringFixed(2),
			Paid:      true,
		}, nil
	}

	amountMinor := models.MinorUnits(totalCost)
	receipt := "rcpt_" + uuid.NewString()

	order, err := s.gateway.CreateOrder(ctx, amountMinor, "INR", receipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrGatewayUnavailable, err)
	}

	payment := &models.Payment{
		RazorpayOrderID: order.OrderID,
		Amount:          totalCost,
		Currency:        order.Currency,
		RawResponse:     order.Raw,
	}
	if payment.Currency == "" {
		payment.Currency = "INR"
	}

	if err := s.bookings.CreateWithPayment(ctx, booking, payment); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return &models.CreateBookingResponse{
		BookingID:       booking.ID,
		TicketID:        booking.TicketID,
		TotalCost:       totalCost.StringFixed(2),
		Paid:            false,
		RazorpayOrderID: order.OrderID,
		AmountMinor:     amountMinor,
		Currency:        payment.Currency,
	}, nil
}

func (s *BookingService) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, errors.ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, eventID int64) ([]models.Booking, error) {
	bookings, err := s.bookings.List(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ExportParticipants returns booking rows for the CSV export.
func (s *BookingService) ExportParticipants(ctx context.Context, eventID int64) ([]repository.ParticipantRow, error) {
	rows, err := s.bookings.ExportParticipants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to export participants: %w", err)
	}
	return rows, nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, booking *models.Booking) {
	event := models.BookingConfirmedEvent{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		TicketID:  booking.TicketID,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.EventBookingConfirmed, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking confirmed event",
			"booking_id", booking.ID, "error", err)
	}
}
