package models

import (
	"github.com/shopspring/decimal"
)

// SponsorInput is an inline sponsor attached to event creation
type SponsorInput struct {
	Name    string          `json:"name" binding:"required"`
	Purpose string          `json:"purpose"`
	Contact string          `json:"contact"`
	Cost    decimal.Decimal `json:"cost"`
}

// CreateEventRequest - payload for creating an event
type CreateEventRequest struct {
	EventName      string          `json:"event_name" binding:"required"`
	Category       string          `json:"category"`
	Organiser      string          `json:"organiser" binding:"required"`
	Theme          string          `json:"theme"`
	Description    string          `json:"description"`
	Date           string          `json:"date" binding:"required"` // YYYY-MM-DD
	Time           string          `json:"time" binding:"required"` // HH:MM
	Venue          string          `json:"venue" binding:"required"`
	TotalTickets   int             `json:"total_tickets"`
	PricePerTicket decimal.Decimal `json:"price_per_ticket"`
	FreeTicket     bool            `json:"free_ticket"`
	Sponsors       []SponsorInput  `json:"sponsors"`
}

// CreateEventResponse - response for event creation
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// UpdateEventRequest - payload for editing an event; empty fields keep
// their stored values
type UpdateEventRequest struct {
	EventName   string `json:"event_name"`
	Organiser   string `json:"organiser"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
}

// UpdateEventStatusRequest - payload for toggling event availability
type UpdateEventStatusRequest struct {
	Status *bool `json:"status" binding:"required"`
}

// EventStats - aggregates for one event
type EventStats struct {
	TicketsSold      int             `json:"tickets_sold"`
	TicketsRemaining int             `json:"tickets_remaining"`
	Revenue          decimal.Decimal `json:"revenue"`
	BookingCount     int             `json:"booking_count"`
	SponsorFunds     decimal.Decimal `json:"sponsor_funds"`
}

// EventDetailResponse - one event with aggregates and filtered bookings
type EventDetailResponse struct {
	Event    *Event     `json:"event"`
	Stats    EventStats `json:"stats"`
	Bookings []Booking  `json:"bookings"`
}

// CreateBookingRequest - payload for booking tickets
type CreateBookingRequest struct {
	EventID         int64  `json:"event_id" binding:"required"`
	NumberOfTickets int    `json:"number_of_tickets" binding:"required"`
	Name            string `json:"name" binding:"required"`
	ContactNumber   string `json:"contact_number" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
}

// CreateBookingResponse - response for booking creation. For paid bookings
// the gateway order id and minor-unit amount are returned so the client can
// open checkout.
type CreateBookingResponse struct {
	BookingID       int64  `json:"booking_id"`
	TicketID        string `json:"ticket_id"`
	TotalCost       string `json:"total_cost"`
	Paid            bool   `json:"paid"`
	RazorpayOrderID string `json:"razorpay_order_id,omitempty"`
	AmountMinor     int64  `json:"amount_minor,omitempty"`
	Currency        string `json:"currency,omitempty"`
}

// ConfirmPaymentRequest - client-reported payment completion
type ConfirmPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// WebhookEvent - the subset of the gateway webhook envelope the core reads
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Method  string `json:"method"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// CreateVolunteerRequest - volunteer signup payload
type CreateVolunteerRequest struct {
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	VolunteerRole string   `json:"volunteer_role"`
	Skills        string   `json:"skills"`
	Availability  []string `json:"availability"`
}

// CategoryStats - per-category aggregates for the dashboard
type CategoryStats struct {
	Category     string          `json:"category"`
	EventCount   int             `json:"event_count"`
	Revenue      decimal.Decimal `json:"revenue"`
	TicketsSold  int             `json:"tickets_sold"`
}

// EventSummary - per-event aggregates for the dashboard
type EventSummary struct {
	ID           int64           `json:"id"`
	EventName    string          `json:"event_name"`
	Date         string          `json:"date"`
	TotalTickets int             `json:"total_tickets"`
	TicketsSold  int             `json:"tickets_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	BookingCount int             `json:"booking_count"`
}

// DashboardResponse - aggregate analytics for the admin dashboard
type DashboardResponse struct {
	TotalEvents     int             `json:"total_events"`
	TotalSponsors   int             `json:"total_sponsors"`
	TotalVolunteers int             `json:"total_volunteers"`
	TotalFunds      decimal.Decimal `json:"total_funds"`
	SponsorFunds    decimal.Decimal `json:"sponsor_funds"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
	Events          []EventSummary  `json:"events"`
	Categories      []CategoryStats `json:"categories"`
}
