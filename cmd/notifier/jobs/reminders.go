package jobs

import (
	"context"
	"log/slog"
	"time"

	"evmapp/internal/messaging"
	"evmapp/internal/models"
	"evmapp/internal/repository"
)

// ReminderCheckInterval is how often the job scans for bookings entering a
// reminder window.
const ReminderCheckInterval = 5 * time.Minute

// ReminderJob publishes reminder.due events for bookings whose event starts
// within 24 hours or 2 hours. Each window fires once per booking; the sent
// flag is flipped before publishing so a crash cannot double-remind.
type ReminderJob struct {
	bookingRepo *repository.BookingRepository
	natsClient  *messaging.NATSClient
	ticker      *time.Ticker
	done        chan bool
}

func NewReminderJob(bookingRepo *repository.BookingRepository, natsClient *messaging.NATSClient) *ReminderJob {
	return &ReminderJob{
		bookingRepo: bookingRepo,
		natsClient:  natsClient,
		done:        make(chan bool),
	}
}

// Start begins the background scan loop.
func (j *ReminderJob) Start(ctx context.Context) {
	slog.Info("Starting reminder job", "check_interval", ReminderCheckInterval.String())

	j.ticker = time.NewTicker(ReminderCheckInterval)

	// Run initial check immediately
	go j.checkDueReminders(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.checkDueReminders(ctx)
			case <-j.done:
				slog.Info("Reminder job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job.
func (j *ReminderJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *ReminderJob) checkDueReminders(ctx context.Context) {
	j.processWindow(ctx, 24)
	j.processWindow(ctx, 2)
}

func (j *ReminderJob) processWindow(ctx context.Context, window int) {
	due, err := j.bookingRepo.GetDueReminders(ctx, window)
	if err != nil {
		slog.Error("Failed to query due reminders", "window_hours", window, "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	slog.Info("Found bookings entering reminder window",
		"window_hours", window, "count", len(due))

	for _, rb := range due {
		if err := j.bookingRepo.MarkReminderSent(ctx, rb.Booking.ID, window); err != nil {
			slog.Error("Failed to mark reminder sent",
				"booking_id", rb.Booking.ID, "window_hours", window, "error", err)
			continue
		}

		event := models.ReminderDueEvent{
			BookingID:      rb.Booking.ID,
			EventID:        rb.Event.ID,
			HoursRemaining: window,
			Timestamp:      time.Now(),
		}
		if err := j.natsClient.Publish(models.EventReminderDue, event); err != nil {
			slog.Error("Failed to publish reminder due event",
				"booking_id", rb.Booking.ID, "error", err)
		}
	}
}
