package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"evmapp/internal/database"
	"evmapp/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts an event and its inline sponsors in one transaction.
// Sponsors are created as new rows and linked through event_sponsors.
func (r *EventRepository) Create(ctx context.Context, event *models.Event, sponsors []models.Sponsor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (event_name, category, organiser, theme, description,
		                    event_date, event_time, venue, total_tickets,
		                    price_per_ticket, status, free_ticket)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		event.EventName,
		event.Category,
		event.Organiser,
		event.Theme,
		event.Description,
		event.Date,
		event.Time,
		event.Venue,
		event.TotalTickets,
		event.PricePerTicket,
		event.Status,
		event.FreeTicket,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range sponsors {
		sponsor := &sponsors[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO sponsors (name, purpose, contact, cost, status)
			VALUES ($1, $2, $3, $4, TRUE)
			RETURNING id`,
			sponsor.Name, sponsor.Purpose, sponsor.Contact, sponsor.Cost,
		).Scan(&sponsor.ID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO event_sponsors (event_id, sponsor_id)
			VALUES ($1, $2)
			ON CONFLICT (event_id, sponsor_id) DO NOTHING`,
			event.ID, sponsor.ID,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	event.Sponsors = sponsors
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, event_name, category, organiser, theme, description,
		       event_date, event_time, venue, total_tickets, price_per_ticket,
		       status, free_ticket, created_at, updated_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.EventName,
		&event.Category,
		&event.Organiser,
		&event.Theme,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Venue,
		&event.TotalTickets,
		&event.PricePerTicket,
		&event.Status,
		&event.FreeTicket,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sponsors, err := r.sponsorsForEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Sponsors = sponsors

	return event, nil
}

// ListFilter narrows the event listing. Zero values mean no filtering.
type ListFilter struct {
	Query    string
	Date     string // YYYY-MM-DD
	Category string
	IDs      []int64 // restrict to these ids (search results)
	Page     int
	PageSize int
}

func (r *EventRepository) List(ctx context.Context, filter ListFilter) ([]models.Event, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		p := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf(
			"(event_name ILIKE %s OR organiser ILIKE %s OR venue ILIKE %s OR theme ILIKE %s)", p, p, p, p))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		conditions = append(conditions, fmt.Sprintf("event_date = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(filter.IDs) > 0 {
		placeholders := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}

	query := `
		SELECT id, event_name, category, organiser, theme, description,
		       event_date, event_time, venue, total_tickets, price_per_ticket,
		       status, free_ticket, created_at, updated_at
		FROM events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY event_date DESC, id DESC"

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (page-1)*filter.PageSize)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.EventName,
			&event.Category,
			&event.Organiser,
			&event.Theme,
			&event.Description,
			&event.Date,
			&event.Time,
			&event.Venue,
			&event.TotalTickets,
			&event.PricePerTicket,
			&event.Status,
			&event.FreeTicket,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Update rewrites the mutable columns of an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET event_name = $1, organiser = $2, theme = $3, description = $4,
		    event_date = $5, event_time = $6, venue = $7, updated_at = NOW()
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		event.EventName,
		event.Organiser,
		event.Theme,
		event.Description,
		event.Date,
		event.Time,
		event.Venue,
		event.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetStats aggregates ticket sales and sponsor funds for one event.
// Revenue counts paid bookings only.
func (r *EventRepository) GetStats(ctx context.Context, id int64) (models.EventStats, error) {
	var stats models.EventStats

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(number_of_tickets), 0),
		       COUNT(*),
		       COALESCE(SUM(total_cost) FILTER (WHERE paid), 0)
		FROM bookings
		WHERE event_id = $1`,
		id,
	).Scan(&stats.TicketsSold, &stats.BookingCount, &stats.Revenue)
	if err != nil {
		return stats, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(s.cost), 0)
		FROM sponsors s
		JOIN event_sponsors es ON es.sponsor_id = s.id
		WHERE es.event_id = $1`,
		id,
	).Scan(&stats.SponsorFunds)
	if err != nil {
		return stats, err
	}

	var totalTickets int
	err = r.db.QueryRowContext(ctx,
		`SELECT total_tickets FROM events WHERE id = $1`, id,
	).Scan(&totalTickets)
	if err != nil {
		return stats, err
	}

	stats.TicketsRemaining = totalTickets - stats.TicketsSold
	if stats.TicketsRemaining < 0 {
		stats.TicketsRemaining = 0
	}

	return stats, nil
}

func (r *EventRepository) sponsorsForEvent(ctx context.Context, eventID int64) ([]models.Sponsor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.purpose, s.contact, s.cost, s.status
		FROM sponsors s
		JOIN event_sponsors es ON es.sponsor_id = s.id
		WHERE es.event_id = $1
		ORDER BY s.id`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sponsors []models.Sponsor
	for rows.Next() {
		var s models.Sponsor
		var purpose, contact sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &purpose, &contact, &s.Cost, &s.Status); err != nil {
			return nil, err
		}
		s.Purpose = purpose.String
		s.Contact = contact.String
		sponsors = append(sponsors, s)
	}

	return sponsors, rows.Err()
}
