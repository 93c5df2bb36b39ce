package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"evmapp/internal/database"
	"evmapp/internal/models"
)

// ticketIDMaxAttempts bounds retries when a generated ticket code collides
// with an existing one.
const ticketIDMaxAttempts = 5

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking with a fresh ticket code, retrying on ticket-id
// collisions. Used for free events where no payment row is needed.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	for attempt := 0; attempt < ticketIDMaxAttempts; attempt++ {
		ticketID, err := models.GenerateTicketID()
		if err != nil {
			return err
		}

		err = r.db.QueryRowContext(ctx, `
			INSERT INTO bookings (event_id, number_of_tickets, name, contact_number,
			                      email, total_cost, paid, ticket_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at`,
			booking.EventID,
			booking.NumberOfTickets,
			booking.Name,
			booking.ContactNumber,
			booking.Email,
			booking.TotalCost,
			booking.Paid,
			ticketID,
		).Scan(&booking.ID, &booking.CreatedAt)

		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return err
		}

		booking.TicketID = ticketID
		return nil
	}

	return fmt.Errorf("could not allocate a unique ticket id after %d attempts", ticketIDMaxAttempts)
}

// CreateWithPayment inserts a booking and its initial payment row in one
// transaction. The gateway order is created by the caller before this runs,
// so a failed insert leaves nothing behind locally. A ticket-id collision
// aborts the transaction, so the whole transaction is retried with a fresh
// code.
func (r *BookingRepository) CreateWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error {
	for attempt := 0; attempt < ticketIDMaxAttempts; attempt++ {
		err := r.createWithPaymentOnce(ctx, booking, payment)
		if isUniqueViolation(err) {
			continue
		}
		return err
	}
	return fmt.Errorf("could not allocate a unique ticket id after %d attempts", ticketIDMaxAttempts)
}

func (r *BookingRepository) createWithPaymentOnce(ctx context.Context, booking *models.Booking, payment *models.Payment) error {
	ticketID, err := models.GenerateTicketID()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (event_id, number_of_tickets, name, contact_number,
		                      email, total_cost, paid, ticket_id)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
		RETURNING id, created_at`,
		booking.EventID,
		booking.NumberOfTickets,
		booking.Name,
		booking.ContactNumber,
		booking.Email,
		booking.TotalCost,
		ticketID,
	).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return err
	}

	payment.BookingID = booking.ID
	payment.Status = models.PaymentStatusCreated
	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (booking_id, razorpay_order_id, status, amount, currency, raw_response)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		payment.BookingID,
		payment.RazorpayOrderID,
		payment.Status,
		payment.Amount,
		payment.Currency,
		payment.RawResponse,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	booking.TicketID = ticketID
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, number_of_tickets, name, contact_number, email,
		       total_cost, paid, payment_id, ticket_id, reminder_24h_sent,
		       reminder_2h_sent, last_reminder_sent, created_at
		FROM bookings
		WHERE id = $1`,
		id,
	).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.NumberOfTickets,
		&booking.Name,
		&booking.ContactNumber,
		&booking.Email,
		&booking.TotalCost,
		&booking.Paid,
		&booking.PaymentID,
		&booking.TicketID,
		&booking.Reminder24hSent,
		&booking.Reminder2hSent,
		&booking.LastReminderSent,
		&booking.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

// List returns bookings, optionally scoped to one event.
func (r *BookingRepository) List(ctx context.Context, eventID int64) ([]models.Booking, error) {
	query := `
		SELECT id, event_id, number_of_tickets, name, contact_number, email,
		       total_cost, paid, payment_id, ticket_id, reminder_24h_sent,
		       reminder_2h_sent, last_reminder_sent, created_at
		FROM bookings`
	var args []interface{}
	if eventID > 0 {
		query += " WHERE event_id = $1"
		args = append(args, eventID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ParticipantRow is one line of the participants export.
type ParticipantRow struct {
	TicketID        string
	Name            string
	ContactNumber   string
	Email           string
	NumberOfTickets int
	Paid            bool
	EventName       string
	EventDate       time.Time
}

// ExportParticipants returns booking rows joined with event names for the
// CSV export, optionally scoped to one event.
func (r *BookingRepository) ExportParticipants(ctx context.Context, eventID int64) ([]ParticipantRow, error) {
	query := `
		SELECT b.ticket_id, b.name, b.contact_number, b.email,
		       b.number_of_tickets, b.paid, e.event_name, e.event_date
		FROM bookings b
		JOIN events e ON e.id = b.event_id`
	var args []interface{}
	if eventID > 0 {
		query += " WHERE b.event_id = $1"
		args = append(args, eventID)
	}
	query += " ORDER BY e.event_date, b.created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ParticipantRow
	for rows.Next() {
		var row ParticipantRow
		err := rows.Scan(
			&row.TicketID,
			&row.Name,
			&row.ContactNumber,
			&row.Email,
			&row.NumberOfTickets,
			&row.Paid,
			&row.EventName,
			&row.EventDate,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// ReminderBooking pairs a booking with its event for reminder dispatch.
type ReminderBooking struct {
	Booking models.Booking
	Event   models.Event
}

// GetDueReminders returns bookings for events starting within the given
// window that have not yet received that window's reminder. Window is either
// 24 or 2 (hours).
func (r *BookingRepository) GetDueReminders(ctx context.Context, window int) ([]ReminderBooking, error) {
	var condition string
	switch window {
	case 24:
		condition = `e.event_date = (CURRENT_DATE + INTERVAL '1 day')::date
		             AND b.reminder_24h_sent = FALSE`
	case 2:
		condition = `e.event_date = CURRENT_DATE
		             AND (e.event_date + e.event_time) BETWEEN NOW() AND NOW() + INTERVAL '2 hours'
		             AND b.reminder_2h_sent = FALSE`
	default:
		return nil, fmt.Errorf("unsupported reminder window: %d", window)
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.event_id, b.number_of_tickets, b.name, b.contact_number,
		       b.email, b.total_cost, b.paid, b.payment_id, b.ticket_id,
		       b.reminder_24h_sent, b.reminder_2h_sent, b.last_reminder_sent, b.created_at,
		       e.id, e.event_name, e.category, e.organiser, e.theme, e.description,
		       e.event_date, e.event_time, e.venue, e.total_tickets,
		       e.price_per_ticket, e.status, e.free_ticket, e.created_at, e.updated_at
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE e.status = TRUE AND %s`,
		condition,
	)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReminderBooking
	for rows.Next() {
		var rb ReminderBooking
		err := rows.Scan(
			&rb.Booking.ID,
			&rb.Booking.EventID,
			&rb.Booking.NumberOfTickets,
			&rb.Booking.Name,
			&rb.Booking.ContactNumber,
			&rb.Booking.Email,
			&rb.Booking.TotalCost,
			&rb.Booking.Paid,
			&rb.Booking.PaymentID,
			&rb.Booking.TicketID,
			&rb.Booking.Reminder24hSent,
			&rb.Booking.Reminder2hSent,
			&rb.Booking.LastReminderSent,
			&rb.Booking.CreatedAt,
			&rb.Event.ID,
			&rb.Event.EventName,
			&rb.Event.Category,
			&rb.Event.Organiser,
			&rb.Event.Theme,
			&rb.Event.Description,
			&rb.Event.Date,
			&rb.Event.Time,
			&rb.Event.Venue,
			&rb.Event.TotalTickets,
			&rb.Event.PricePerTicket,
			&rb.Event.Status,
			&rb.Event.FreeTicket,
			&rb.Event.CreatedAt,
			&rb.Event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, rb)
	}

	return out, rows.Err()
}

// MarkReminderSent flips the reminder flag for the given window and records
// the send time.
func (r *BookingRepository) MarkReminderSent(ctx context.Context, bookingID int64, window int) error {
	var column string
	switch window {
	case 24:
		column = "reminder_24h_sent"
	case 2:
		column = "reminder_2h_sent"
	default:
		return fmt.Errorf("unsupported reminder window: %d", window)
	}

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE bookings SET %s = TRUE, last_reminder_sent = NOW() WHERE id = $1`, column),
		bookingID,
	)
	return err
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.EventID,
			&booking.NumberOfTickets,
			&booking.Name,
			&booking.ContactNumber,
			&booking.Email,
			&booking.TotalCost,
			&booking.Paid,
			&booking.PaymentID,
			&booking.TicketID,
			&booking.Reminder24hSent,
			&booking.Reminder2hSent,
			&booking.LastReminderSent,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
