package service

import (
	"context"
	"fmt"
	"time"

	"evmapp/internal/errors"
	"evmapp/internal/logger"
	"evmapp/internal/models"
	"evmapp/internal/repository"
	"evmapp/internal/search"
)

type bookingLister interface {
	List(ctx context.Context, eventID int64) ([]models.Booking, error)
}

type EventService struct {
	eventRepo    *repository.EventRepository
	bookings     bookingLister
	searchClient *search.ElasticsearchClient
}

func NewEventService(eventRepo *repository.EventRepository, bookings bookingLister, searchClient *search.ElasticsearchClient) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		bookings:     bookings,
		searchClient: searchClient,
	}
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", req.Time, err)
	}

	category := req.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !validCategory(category) {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}

	event := &models.Event{
		EventName:      req.EventName,
		Category:       category,
		Organiser:      req.Organiser,
		Date:           date,
		Time:           req.Time,
		Venue:          req.Venue,
		TotalTickets:   req.TotalTickets,
		PricePerTicket: req.PricePerTicket,
		Status:         true,
		FreeTicket:     req.FreeTicket,
	}
	if req.Theme != "" {
		event.Theme = &req.Theme
	}
	if req.Description != "" {
		event.Description = &req.Description
	}

	sponsors := make([]models.Sponsor, len(req.Sponsors))
	for i, in := range req.Sponsors {
		sponsors[i] = models.Sponsor{
			Name:    in.Name,
			Purpose: in.Purpose,
			Contact: in.Contact,
			Cost:    in.Cost,
		}
	}

	if err := s.eventRepo.Create(ctx, event, sponsors); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.indexEvent(ctx, event)
	return event, nil
}

func (s *EventService) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, errors.ErrEventNotFound
	}
	return event, nil
}

// GetDetail returns one event with its aggregates and bookings.
func (s *EventService) GetDetail(ctx context.Context, id int64) (*models.EventDetailResponse, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.eventRepo.GetStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to compute event stats: %w", err)
	}

	bookings, err := s.bookings.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list event bookings: %w", err)
	}

	return &models.EventDetailResponse{
		Event:    event,
		Stats:    stats,
		Bookings: bookings,
	}, nil
}

// List returns events matching the filter. When a search backend is
// configured and a text query is present, the query runs there and the
// database is consulted for the matching ids only.
func (s *EventService) List(ctx context.Context, filter repository.ListFilter) ([]models.Event, error) {
	if s.searchClient != nil && filter.Query != "" {
		limit := filter.PageSize
		if limit <= 0 {
			limit = 50
		}
		ids, err := s.searchClient.SearchEvents(ctx, filter.Query, limit)
		if err != nil {
			logger.WithContext(ctx).Warn("Search backend unavailable, falling back to SQL",
				"error", err)
		} else {
			if len(ids) == 0 {
				return []models.Event{}, nil
			}
			filter.Query = ""
			filter.IDs = ids
		}
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Update applies a partial edit: empty request fields keep stored values.
func (s *EventService) Update(ctx context.Context, id int64, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.EventName != "" {
		event.EventName = req.EventName
	}
	if req.Organiser != "" {
		event.Organiser = req.Organiser
	}
	if req.Theme != "" {
		event.Theme = &req.Theme
	}
	if req.Description != "" {
		event.Description = &req.Description
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
		event.Date = date
	}
	if req.Time != "" {
		if _, err := time.Parse("15:04", req.Time); err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", req.Time, err)
		}
		event.Time = req.Time
	}
	if req.Venue != "" {
		event.Venue = req.Venue
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.indexEvent(ctx, event)
	return event, nil
}

func (s *EventService) UpdateStatus(ctx context.Context, id int64, status bool) error {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}

	event.Status = status
	s.indexEvent(ctx, event)
	return nil
}

// indexEvent mirrors an event into the search index, best effort.
func (s *EventService) indexEvent(ctx context.Context, event *models.Event) {
	if s.searchClient == nil {
		return
	}

	doc := search.EventDocument{
		ID:        event.ID,
		EventName: event.EventName,
		Category:  event.Category,
		Organiser: event.Organiser,
		Venue:     event.Venue,
		Date:      event.Date.Format("2006-01-02"),
		Status:    event.Status,
	}
	if event.Theme != nil {
		doc.Theme = *event.Theme
	}

	if err := s.searchClient.IndexEvent(ctx, doc); err != nil {
		logger.WithContext(ctx).Warn("Failed to index event",
			"event_id", event.ID, "error", err)
	}
}

func validCategory(category string) bool {
	for _, c := range models.EventCategories {
		if c == category {
			return true
		}
	}
	return false
}
