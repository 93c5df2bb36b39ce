package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"evmapp/internal/models"
	"evmapp/internal/notify"
	"evmapp/internal/repository"
)

type Handlers struct {
	repos    *repository.Repositories
	notifier *notify.Notifier
}

func NewHandlers(repos *repository.Repositories, notifier *notify.Notifier) *Handlers {
	return &Handlers{
		repos:    repos,
		notifier: notifier,
	}
}

// HandleBookingConfirmed sends the confirmation email and SMS for a newly
// finalized booking. The message is acked even when delivery fails; a
// redelivery loop on a bad email address would never terminate.
func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking confirmed event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing booking confirmed event",
		"booking_id", event.BookingID, "ticket_id", event.TicketID)

	ctx := context.Background()
	booking, err := h.repos.Bookings.GetByID(ctx, event.BookingID)
	if err != nil {
		slog.Error("Failed to get booking", "booking_id", event.BookingID, "error", err)
		return
	}
	if booking == nil {
		slog.Warn("Booking confirmed event for unknown booking", "booking_id", event.BookingID)
		m.Ack()
		return
	}

	eventRow, err := h.repos.Events.GetByID(ctx, booking.EventID)
	if err != nil || eventRow == nil {
		slog.Error("Failed to get event for booking",
			"booking_id", booking.ID, "event_id", booking.EventID, "error", err)
		return
	}

	h.notifier.BookingConfirmed(ctx, booking, eventRow)
	m.Ack()
}

// HandlePaymentFailed records the failure in the log stream. No customer
// notification is sent; the checkout client already shows the failure.
func (h *Handlers) HandlePaymentFailed(m *stan.Msg) {
	var event models.PaymentFailedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment failed event", "error", err)
		m.Ack()
		return
	}

	slog.Warn("Payment failed", "order_id", event.OrderID, "booking_id", event.BookingID)
	m.Ack()
}

// HandleReminderDue sends the reminder email for a booking entering a
// reminder window.
func (h *Handlers) HandleReminderDue(m *stan.Msg) {
	var event models.ReminderDueEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reminder due event", "error", err)
		m.Ack()
		return
	}

	ctx := context.Background()
	booking, err := h.repos.Bookings.GetByID(ctx, event.BookingID)
	if err != nil || booking == nil {
		slog.Error("Failed to get booking for reminder",
			"booking_id", event.BookingID, "error", err)
		m.Ack()
		return
	}

	eventRow, err := h.repos.Events.GetByID(ctx, event.EventID)
	if err != nil || eventRow == nil {
		slog.Error("Failed to get event for reminder",
			"event_id", event.EventID, "error", err)
		m.Ack()
		return
	}

	h.notifier.EventReminder(ctx, booking, eventRow, event.HoursRemaining)
	m.Ack()
}
