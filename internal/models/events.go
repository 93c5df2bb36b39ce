package models

import "time"

// NATS subjects
const (
	EventBookingConfirmed = "booking.confirmed"
	EventPaymentFailed    = "payment.failed"
	EventReminderDue      = "reminder.due"
)

// BookingConfirmedEvent is published after a booking is finalized (free
// bookings at creation, paid bookings once the payment is captured). The
// notifier worker consumes it and sends the confirmation email and SMS.
type BookingConfirmedEvent struct {
	BookingID int64     `json:"booking_id"`
	EventID   int64     `json:"event_id"`
	TicketID  string    `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentFailedEvent is published when the gateway reports a failed payment
type PaymentFailedEvent struct {
	BookingID int64     `json:"booking_id"`
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ReminderDueEvent is published by the reminder job for each booking that
// enters a reminder window
type ReminderDueEvent struct {
	BookingID      int64     `json:"booking_id"`
	EventID        int64     `json:"event_id"`
	HoursRemaining int       `json:"hours_remaining"`
	Timestamp      time.Time `json:"timestamp"`
}
