package models

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Event categories
const (
	CategoryConference = "CONFERENCE"
	CategoryWorkshop   = "WORKSHOP"
	CategorySeminar    = "SEMINAR"
	CategoryCultural   = "CULTURAL"
	CategorySports     = "SPORTS"
	CategoryConcert    = "CONCERT"
	CategoryExhibition = "EXHIBITION"
	CategoryNetworking = "NETWORKING"
	CategoryOther      = "OTHER"
)

// EventCategories lists the allowed category tags.
var EventCategories = []string{
	CategoryConference, CategoryWorkshop, CategorySeminar, CategoryCultural,
	CategorySports, CategoryConcert, CategoryExhibition, CategoryNetworking,
	CategoryOther,
}

// Payment statuses. created is initial; captured and failed are terminal.
const (
	PaymentStatusCreated  = "created"
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

// Event represents a bookable occasion
type Event struct {
	ID             int64           `json:"id" db:"id"`
	EventName      string          `json:"event_name" db:"event_name"`
	Category       string          `json:"category" db:"category"`
	Organiser      string          `json:"organiser" db:"organiser"`
	Theme          *string         `json:"theme" db:"theme"`
	Description    *string         `json:"description" db:"description"`
	Date           time.Time       `json:"date" db:"event_date"`
	Time           string          `json:"time" db:"event_time"`
	Venue          string          `json:"venue" db:"venue"`
	TotalTickets   int             `json:"total_tickets" db:"total_tickets"`
	PricePerTicket decimal.Decimal `json:"price_per_ticket" db:"price_per_ticket"`
	Status         bool            `json:"status" db:"status"`
	FreeTicket     bool            `json:"free_ticket" db:"free_ticket"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	Sponsors       []Sponsor       `json:"sponsors,omitempty"` // Not from DB, filled separately
}

// EffectivePrice returns the per-ticket price, zero for free-ticket events
// regardless of the stored value.
func (e *Event) EffectivePrice() decimal.Decimal {
	if e.FreeTicket {
		return decimal.Zero
	}
	return e.PricePerTicket
}

// Sponsor represents an event sponsor
type Sponsor struct {
	ID      int64           `json:"id" db:"id"`
	Name    string          `json:"name" db:"name"`
	Purpose string          `json:"purpose" db:"purpose"`
	Contact string          `json:"contact" db:"contact"`
	Cost    decimal.Decimal `json:"cost" db:"cost"`
	Status  bool            `json:"status" db:"status"`
}

// Booking represents a ticket reservation against one event
type Booking struct {
	ID               int64           `json:"id" db:"id"`
	EventID          int64           `json:"event_id" db:"event_id"`
	NumberOfTickets  int             `json:"number_of_tickets" db:"number_of_tickets"`
	Name             string          `json:"name" db:"name"`
	ContactNumber    string          `json:"contact_number" db:"contact_number"`
	Email            string          `json:"email" db:"email"`
	TotalCost        decimal.Decimal `json:"total_cost" db:"total_cost"`
	Paid             bool            `json:"paid" db:"paid"`
	PaymentID        string          `json:"payment_id" db:"payment_id"`
	TicketID         string          `json:"ticket_id" db:"ticket_id"`
	Reminder24hSent  bool            `json:"reminder_24h_sent" db:"reminder_24h_sent"`
	Reminder2hSent   bool            `json:"reminder_2h_sent" db:"reminder_2h_sent"`
	LastReminderSent *time.Time      `json:"last_reminder_sent" db:"last_reminder_sent"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Payment tracks one gateway order attempt for one booking. The gateway
// payment id is write-once: its presence is the idempotency guard for the
// created -> captured transition.
type Payment struct {
	ID                int64           `json:"id" db:"id"`
	BookingID         int64           `json:"booking_id" db:"booking_id"`
	RazorpayOrderID   string          `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID *string         `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	Status            string          `json:"status" db:"status"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Currency          string          `json:"currency" db:"currency"`
	Method            *string         `json:"method" db:"method"`
	RawResponse       []byte          `json:"-" db:"raw_response"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// Volunteer represents a volunteer signup
type Volunteer struct {
	ID            int64     `json:"id" db:"id"`
	FirstName     *string   `json:"first_name" db:"first_name"`
	LastName      *string   `json:"last_name" db:"last_name"`
	Email         *string   `json:"email" db:"email"`
	Phone         *string   `json:"phone" db:"phone"`
	Address       *string   `json:"address" db:"address"`
	City          *string   `json:"city" db:"city"`
	State         *string   `json:"state" db:"state"`
	VolunteerRole string    `json:"volunteer_role" db:"volunteer_role"`
	Skills        *string   `json:"skills" db:"skills"`
	Availability  []string  `json:"availability" db:"availability"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

const ticketIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TicketIDLength is the length of the human-presentable ticket code.
const TicketIDLength = 5

// GenerateTicketID produces a short random ticket code. Each position is
// drawn uniformly from the alphabet. The alphabet is small, so callers must
// retry on a unique-constraint conflict.
func GenerateTicketID() (string, error) {
	max := big.NewInt(int64(len(ticketIDCharset)))
	code := make([]byte, TicketIDLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = ticketIDCharset[n.Int64()]
	}
	return string(code), nil
}

// MinorUnits converts a decimal amount to integer minor-currency units
// (e.g. rupees to paise) with round-half-up at the unit boundary.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
