package services

import (
	"context"

	"enforcement-backend/internal/repository"
)

// ReportService produces the aggregate summary for the admin dashboard.
type ReportService struct {
	fineRepo    repository.FineRepository
	vehicleRepo repository.VehicleRepository
}

func NewReportService(fineRepo repository.FineRepository, vehicleRepo repository.VehicleRepository) *ReportService {
	return &ReportService{
		fineRepo:    fineRepo,
		vehicleRepo: vehicleRepo,
	}
}

type SummaryReport struct {
	RegisteredVehicles int64                            `json:"registeredVehicles"`
	Fines              *repository.CollectionStatistics `json:"fines"`
}

func (s *ReportService) Summary(ctx context.Context) (*SummaryReport, error) {
	vehicles, err := s.vehicleRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.fineRepo.CollectionStatistics(ctx)
	if err != nil {
		return nil, err
	}

	return &SummaryReport{
		RegisteredVehicles: vehicles,
		Fines:              stats,
	}, nil
}
