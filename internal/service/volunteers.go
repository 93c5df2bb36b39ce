package service

import (
	"context"
	"fmt"

	"evmapp/internal/models"
	"evmapp/internal/repository"
)

type VolunteerService struct {
	volunteerRepo *repository.VolunteerRepository
}

func NewVolunteerService(volunteerRepo *repository.VolunteerRepository) *VolunteerService {
	return &VolunteerService{volunteerRepo: volunteerRepo}
}

func (s *VolunteerService) Create(ctx context.Context, req *models.CreateVolunteerRequest) (*models.Volunteer, error) {
	volunteer := &models.Volunteer{
		VolunteerRole: req.VolunteerRole,
		Availability:  req.Availability,
		Status:        "Pending",
	}
	if volunteer.VolunteerRole == "" {
		volunteer.VolunteerRole = "General"
	}
	if volunteer.Availability == nil {
		volunteer.Availability = []string{}
	}

	setOptional := func(dst **string, value string) {
		if value != "" {
			*dst = &value
		}
	}
	setOptional(&volunteer.FirstName, req.FirstName)
	setOptional(&volunteer.LastName, req.LastName)
	setOptional(&volunteer.Email, req.Email)
	setOptional(&volunteer.Phone, req.Phone)
	setOptional(&volunteer.Address, req.Address)
	setOptional(&volunteer.City, req.City)
	setOptional(&volunteer.State, req.State)
	setOptional(&volunteer.Skills, req.Skills)

	if err := s.volunteerRepo.Create(ctx, volunteer); err != nil {
		return nil, fmt.Errorf("failed to create volunteer: %w", err)
	}
	return volunteer, nil
}

func (s *VolunteerService) List(ctx context.Context) ([]models.Volunteer, error) {
	volunteers, err := s.volunteerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list volunteers: %w", err)
	}
	return volunteers, nil
}
