package service

import (
	"context"

	"evmapp/internal/external"
	"evmapp/internal/repository"
	"evmapp/internal/search"
)

// Gateway is the payment-gateway surface the services need. Implemented by
// external.RazorpayClient; faked in tests.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*external.OrderResult, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

// Publisher is the event-bus surface the services need. Implemented by
// messaging.NATSClient.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Services struct {
	Events     *EventService
	Bookings   *BookingService
	Payments   *PaymentService
	Dashboard  *DashboardService
	Volunteers *VolunteerService
	Sponsors   *SponsorService
}

// NewServices wires the service layer. searchClient may be nil when no
// search backend is configured; event listing then falls back to SQL.
func NewServices(repos *repository.Repositories, gateway Gateway, publisher Publisher, searchClient *search.ElasticsearchClient) *Services {
	return &Services{
		Events:     NewEventService(repos.Events, repos.Bookings, searchClient),
		Bookings:   NewBookingService(repos.Bookings, repos.Events, gateway, publisher),
		Payments:   NewPaymentService(repos.Payments, repos.Bookings, gateway, publisher),
		Dashboard:  NewDashboardService(repos.Dashboard),
		Volunteers: NewVolunteerService(repos.Volunteers),
		Sponsors:   NewSponsorService(repos.Sponsors),
	}
}
