package notify

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evmapp/internal/models"
)

type capturedMail struct {
	to      string
	subject string
	body    string
}

type fakeEmailSender struct {
	sent []capturedMail
	err  error
}

func (f *fakeEmailSender) Send(to, subject, htmlBody string) error {
	f.sent = append(f.sent, capturedMail{to: to, subject: subject, body: htmlBody})
	return f.err
}

type fakeSMSSender struct {
	sent []string
}

func (f *fakeSMSSender) SendSMS(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, body)
	return nil
}

func sampleBooking() (*models.Booking, *models.Event) {
	booking := &models.Booking{
		ID:              1,
		Name:            "Asha",
		Email:           "asha@example.com",
		ContactNumber:   "9876543210",
		NumberOfTickets: 2,
		TicketID:        "AB12C",
		TotalCost:       decimal.RequireFromString("1000.00"),
	}
	event := &models.Event{
		EventName: "Tech Summit",
		Venue:     "Expo Hall",
		Date:      time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Time:      "10:00",
	}
	return booking, event
}

func TestBookingConfirmedSendsEmailAndSMS(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	n := NewNotifier(email, sms)

	booking, event := sampleBooking()
	n.BookingConfirmed(context.Background(), booking, event)

	require.Len(t, email.sent, 1)
	mail := email.sent[0]
	assert.Equal(t, "asha@example.com", mail.to)
	assert.Contains(t, mail.subject, "Tech Summit")
	assert.Contains(t, mail.subject, "AB12C")
	assert.Contains(t, mail.body, "AB12C")
	assert.Contains(t, mail.body, "Expo Hall")
	assert.Contains(t, mail.body, "15 Sep 2026")

	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0], "AB12C")
}

func TestBookingConfirmedFreeBooking(t *testing.T) {
	email := &fakeEmailSender{}
	n := NewNotifier(email, &fakeSMSSender{})

	booking, event := sampleBooking()
	booking.TotalCost = decimal.Zero
	n.BookingConfirmed(context.Background(), booking, event)

	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].body, "Free")
}

func TestEventReminderSubjects(t *testing.T) {
	email := &fakeEmailSender{}
	n := NewNotifier(email, &fakeSMSSender{})

	booking, event := sampleBooking()
	n.EventReminder(context.Background(), booking, event, 24)
	n.EventReminder(context.Background(), booking, event, 2)

	require.Len(t, email.sent, 2)
	assert.Contains(t, email.sent[0].subject, "24 Hours to Go")
	assert.Contains(t, email.sent[0].body, "tomorrow")
	assert.Contains(t, email.sent[1].subject, "in 2 Hours")
}

func TestBookingConfirmedEscapesAttendeeName(t *testing.T) {
	email := &fakeEmailSender{}
	n := NewNotifier(email, &fakeSMSSender{})

	booking, event := sampleBooking()
	booking.Name = `<script>alert(1)</script>`
	n.BookingConfirmed(context.Background(), booking, event)

	require.Len(t, email.sent, 1)
	assert.NotContains(t, email.sent[0].body, "<script>")
	assert.Contains(t, email.sent[0].body, "&lt;script&gt;")
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	email := &fakeEmailSender{err: assert.AnError}
	n := NewNotifier(email, &fakeSMSSender{})

	booking, event := sampleBooking()
	// Must not panic or propagate
	n.BookingConfirmed(context.Background(), booking, event)
}

func TestNoEmailAddressSkipsSend(t *testing.T) {
	email := &fakeEmailSender{}
	n := NewNotifier(email, &fakeSMSSender{})

	booking, event := sampleBooking()
	booking.Email = ""
	n.BookingConfirmed(context.Background(), booking, event)

	assert.Empty(t, email.sent)
}
