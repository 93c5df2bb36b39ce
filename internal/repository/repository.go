package repository

import (
	"evmapp/internal/database"
)

type Repositories struct {
	Events     *EventRepository
	Bookings   *BookingRepository
	Payments   *PaymentRepository
	Sponsors   *SponsorRepository
	Volunteers *VolunteerRepository
	Dashboard  *DashboardRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:     NewEventRepository(db),
		Bookings:   NewBookingRepository(db),
		Payments:   NewPaymentRepository(db),
		Sponsors:   NewSponsorRepository(db),
		Volunteers: NewVolunteerRepository(db),
		Dashboard:  NewDashboardRepository(db),
	}
}
