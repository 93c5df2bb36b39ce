package repository

import (
	"context"
	"time"

	"evmapp/internal/database"
	"evmapp/internal/models"
)

type DashboardRepository struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// GetDashboard computes the admin analytics snapshot. Revenue figures count
// paid bookings only; sponsor funds come from active sponsors.
func (r *DashboardRepository) GetDashboard(ctx context.Context) (*models.DashboardResponse, error) {
	dashboard := &models.DashboardResponse{}

	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM events),
		       (SELECT COUNT(*) FROM sponsors),
		       (SELECT COUNT(*) FROM volunteers),
		       (SELECT COALESCE(SUM(total_cost), 0) FROM bookings WHERE paid),
		       (SELECT COALESCE(SUM(cost), 0) FROM sponsors WHERE status)`,
	).Scan(
		&dashboard.TotalEvents,
		&dashboard.TotalSponsors,
		&dashboard.TotalVolunteers,
		&dashboard.NetRevenue,
		&dashboard.SponsorFunds,
	)
	if err != nil {
		return nil, err
	}
	dashboard.TotalFunds = dashboard.NetRevenue.Add(dashboard.SponsorFunds)

	events, err := r.eventSummaries(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.Events = events

	categories, err := r.categoryStats(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.Categories = categories

	return dashboard, nil
}

func (r *DashboardRepository) eventSummaries(ctx context.Context) ([]models.EventSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.event_name, e.event_date, e.total_tickets,
		       COALESCE(SUM(b.number_of_tickets), 0),
		       COALESCE(SUM(b.total_cost) FILTER (WHERE b.paid), 0),
		       COUNT(b.id)
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.id
		GROUP BY e.id
		ORDER BY e.event_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.EventSummary
	for rows.Next() {
		var s models.EventSummary
		var date time.Time
		err := rows.Scan(
			&s.ID,
			&s.EventName,
			&date,
			&s.TotalTickets,
			&s.TicketsSold,
			&s.Revenue,
			&s.BookingCount,
		)
		if err != nil {
			return nil, err
		}
		s.Date = date.Format("2006-01-02")
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func (r *DashboardRepository) categoryStats(ctx context.Context) ([]models.CategoryStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.category,
		       COUNT(DISTINCT e.id),
		       COALESCE(SUM(b.total_cost) FILTER (WHERE b.paid), 0),
		       COALESCE(SUM(b.number_of_tickets), 0)
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.id
		GROUP BY e.category
		ORDER BY e.category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.CategoryStats
	for rows.Next() {
		var c models.CategoryStats
		if err := rows.Scan(&c.Category, &c.EventCount, &c.Revenue, &c.TicketsSold); err != nil {
			return nil, err
		}
		stats = append(stats, c)
	}

	return stats, rows.Err()
}
