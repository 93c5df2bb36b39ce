package service

import (
	"context"
	"fmt"

	"evmapp/internal/models"
	"evmapp/internal/repository"
)

type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

func (s *DashboardService) GetDashboard(ctx context.Context) (*models.DashboardResponse, error) {
	dashboard, err := s.dashboardRepo.GetDashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return dashboard, nil
}
