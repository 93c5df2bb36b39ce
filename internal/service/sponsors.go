package service

import (
	"context"
	"fmt"

	"evmapp/internal/models"
	"evmapp/internal/repository"
)

type SponsorService struct {
	sponsorRepo *repository.SponsorRepository
}

func NewSponsorService(sponsorRepo *repository.SponsorRepository) *SponsorService {
	return &SponsorService{sponsorRepo: sponsorRepo}
}

func (s *SponsorService) List(ctx context.Context) ([]models.Sponsor, error) {
	sponsors, err := s.sponsorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	return sponsors, nil
}
