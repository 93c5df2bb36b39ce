package consumers

import (
	"context"
	"log/slog"

	"evmapp/internal/config"
	"evmapp/internal/database"
	"evmapp/internal/external"
	"evmapp/internal/messaging"
	"evmapp/internal/models"
	"evmapp/internal/notify"
	"evmapp/internal/repository"
)

// ConsumerService is the notifier worker: it consumes booking and payment
// events off the bus and turns them into emails and SMS.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)

	mailer := notify.NewMailer(cfg.SMTP)
	smsClient := external.NewTwilioClient(cfg.Twilio)
	notifier := notify.NewNotifier(mailer, smsClient)

	handlers := NewHandlers(repos, notifier)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

// Repositories exposes the repos for the reminder job sharing this process.
func (cs *ConsumerService) Repositories() *repository.Repositories {
	return cs.repos
}

// Bus exposes the NATS client for the reminder job sharing this process.
func (cs *ConsumerService) Bus() *messaging.NATSClient {
	return cs.nats
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	_, err := cs.nats.SubscribeQueue(models.EventBookingConfirmed, "notifier", cs.handlers.HandleBookingConfirmed)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventPaymentFailed, "notifier", cs.handlers.HandlePaymentFailed)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventReminderDue, "notifier", cs.handlers.HandleReminderDue)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
