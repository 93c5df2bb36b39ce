package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"evmapp/internal/models"
)

// EmailSender is satisfied by *Mailer.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

// SMSSender is satisfied by *external.TwilioClient.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Notifier sends booking confirmations and event reminders. Delivery is
// best-effort: failures are logged, never propagated, and every outbound
// call runs under a bounded timeout.
type Notifier struct {
	email   EmailSender
	sms     SMSSender
	timeout time.Duration
}

func NewNotifier(email EmailSender, sms SMSSender) *Notifier {
	return &Notifier{
		email:   email,
		sms:     sms,
		timeout: 15 * time.Second,
	}
}

var confirmationEmailTmpl = template.Must(template.New("confirmation").Parse(`
<p>Dear {{.Booking.Name}},</p>
<p>Your booking for <strong>{{.Event.EventName}}</strong> is confirmed.</p>
<ul>
  <li>Ticket ID: <strong>{{.Booking.TicketID}}</strong></li>
  <li>Tickets: {{.Booking.NumberOfTickets}}</li>
  <li>Venue: {{.Event.Venue}}</li>
  <li>Date: {{.Event.Date.Format "02 Jan 2006"}} at {{.Event.Time}}</li>
  <li>Amount: {{if .IsFree}}Free{{else}}INR {{.Booking.TotalCost}}{{end}}</li>
</ul>
<p>Please carry your ticket ID and a valid ID proof to the venue.</p>
`))

var reminderEmailTmpl = template.Must(template.New("reminder").Parse(`
<p>Dear {{.Booking.Name}},</p>
<p><strong>{{.Event.EventName}}</strong> starts {{if eq .HoursRemaining 24}}tomorrow{{else}}in {{.HoursRemaining}} hours{{end}}.</p>
<ul>
  <li>Ticket ID: <strong>{{.Booking.TicketID}}</strong></li>
  <li>Venue: {{.Event.Venue}}</li>
  <li>Date: {{.Event.Date.Format "02 Jan 2006"}} at {{.Event.Time}}</li>
</ul>
<p>Remember to bring your ticket ID and a valid ID proof.</p>
`))

type mailContext struct {
	Booking        *models.Booking
	Event          *models.Event
	IsFree         bool
	HoursRemaining int
}

// BookingConfirmed sends the confirmation email and SMS for a finalized
// booking.
func (n *Notifier) BookingConfirmed(ctx context.Context, booking *models.Booking, event *models.Event) {
	subject := fmt.Sprintf("Ticket Confirmed: %s | Ticket ID: %s", event.EventName, booking.TicketID)

	data := mailContext{
		Booking: booking,
		Event:   event,
		IsFree:  booking.TotalCost.IsZero(),
	}
	n.sendEmail(booking.Email, subject, confirmationEmailTmpl, data)

	smsBody := fmt.Sprintf("Dear %s, your booking for %d ticket(s) with ticket ID %s has been confirmed.",
		booking.Name, booking.NumberOfTickets, booking.TicketID)
	n.sendSMS(ctx, booking.ContactNumber, smsBody)
}

// EventReminder sends the 24-hour or 2-hour reminder email.
func (n *Notifier) EventReminder(ctx context.Context, booking *models.Booking, event *models.Event, hoursRemaining int) {
	var subject string
	switch hoursRemaining {
	case 24:
		subject = fmt.Sprintf("24 Hours to Go: %s Tomorrow!", event.EventName)
	case 2:
		subject = fmt.Sprintf("Starting Soon: %s in 2 Hours!", event.EventName)
	default:
		subject = fmt.Sprintf("Reminder: %s is Coming Up!", event.EventName)
	}

	data := mailContext{
		Booking:        booking,
		Event:          event,
		HoursRemaining: hoursRemaining,
	}
	n.sendEmail(booking.Email, subject, reminderEmailTmpl, data)
}

func (n *Notifier) sendEmail(to, subject string, tmpl *template.Template, data mailContext) {
	if n.email == nil || to == "" {
		return
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		slog.Error("Failed to render notification email", "error", err, "subject", subject)
		return
	}

	if err := n.email.Send(to, subject, body.String()); err != nil {
		slog.Error("Failed to send notification email", "error", err, "to", to, "subject", subject)
		return
	}

	slog.Info("Notification email sent", "to", to, "subject", subject)
}

func (n *Notifier) sendSMS(ctx context.Context, to, body string) {
	if n.sms == nil || to == "" {
		return
	}

	smsCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.sms.SendSMS(smsCtx, to, body); err != nil {
		slog.Error("Failed to send notification SMS", "error", err, "to", to)
		return
	}

	slog.Info("Notification SMS sent", "to", to)
}
