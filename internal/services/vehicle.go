package services

import (
	"context"
	"errors"
	"time"

	"enforcement-backend/internal/models"
	"enforcement-backend/internal/repository"
	"enforcement-backend/pkg/cache"

	"github.com/sirupsen/logrus"
)

const vehicleCacheTTL = 2 * time.Minute

// VehicleService is the admin-facing vehicle registry: CRUD over vehicle
// records with an optional read cache. Compliance dates are accepted as
// ISO-8601 strings and stored verbatim.
type VehicleService struct {
	vehicleRepo  repository.VehicleRepository
	vehicleCache cache.VehicleCache
}

func NewVehicleService(vehicleRepo repository.VehicleRepository) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
	}
}

// SetVehicleCache enables the read cache for lookups.
func (s *VehicleService) SetVehicleCache(vehicleCache cache.VehicleCache) {
	s.vehicleCache = vehicleCache
}

type CreateVehicleRequest struct {
	VehicleNo       string `json:"vehicleNo" validate:"required,min=1,max=20"`
	ModelNo         string `json:"modelNo,omitempty"`
	RFIDTag         string `json:"rfidTag" validate:"required,min=1,max=64"`
	OwnerName       string `json:"ownerName" validate:"required"`
	MobileNumber    string `json:"mobileNumber" validate:"omitempty,min=10,max=15"`
	InsuranceExpiry string `json:"insuranceExpiry" validate:"omitempty,datetime=2006-01-02"`
	PUCExpiry       string `json:"pucExpiry" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateVehicleRequest struct {
	VehicleNo       string `json:"vehicleNo,omitempty"`
	ModelNo         string `json:"modelNo,omitempty"`
	OwnerName       string `json:"ownerName,omitempty"`
	MobileNumber    string `json:"mobileNumber,omitempty"`
	InsuranceExpiry string `json:"insuranceExpiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PUCExpiry       string `json:"pucExpiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (s *VehicleService) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*models.Vehicle, error) {
	if existing, _ := s.vehicleRepo.FindByRFIDTag(ctx, req.RFIDTag); existing != nil {
		return nil, errors.New("RFID tag already registered")
	}
	if existing, _ := s.vehicleRepo.FindByVehicleNo(ctx, req.VehicleNo); existing != nil {
		return nil, errors.New("vehicle number already registered")
	}

	vehicle := &models.Vehicle{
		VehicleNo:       req.VehicleNo,
		ModelNo:         req.ModelNo,
		RFIDTag:         req.RFIDTag,
		OwnerName:       req.OwnerName,
		MobileNumber:    req.MobileNumber,
		InsuranceExpiry: req.InsuranceExpiry,
		PUCExpiry:       req.PUCExpiry,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	return s.vehicleRepo.Create(ctx, vehicle)
}

func (s *VehicleService) GetVehicleByRFIDTag(ctx context.Context, rfidTag string) (*models.Vehicle, error) {
	if s.vehicleCache != nil {
		cached, err := s.vehicleCache.GetVehicle(ctx, rfidTag)
		if err != nil {
			logrus.WithField("error", err).Warn("vehicle cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	vehicle, err := s.vehicleRepo.FindByRFIDTag(ctx, rfidTag)
	if err != nil {
		return nil, err
	}

	if s.vehicleCache != nil {
		if err := s.vehicleCache.SetVehicle(ctx, rfidTag, vehicle, vehicleCacheTTL); err != nil {
			logrus.WithField("error", err).Warn("vehicle cache write failed")
		}
	}

	return vehicle, nil
}

func (s *VehicleService) GetVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.vehicleRepo.FindByID(ctx, id)
}

func (s *VehicleService) GetAllVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	return s.vehicleRepo.FindAll(ctx)
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, id string, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.VehicleNo != "" {
		existing, _ := s.vehicleRepo.FindByVehicleNo(ctx, req.VehicleNo)
		if existing != nil && existing.ID.Hex() != id {
			return nil, errors.New("vehicle number already registered")
		}
		vehicle.VehicleNo = req.VehicleNo
	}
	if req.ModelNo != "" {
		vehicle.ModelNo = req.ModelNo
	}
	if req.OwnerName != "" {
		vehicle.OwnerName = req.OwnerName
	}
	if req.MobileNumber != "" {
		vehicle.MobileNumber = req.MobileNumber
	}
	if req.InsuranceExpiry != "" {
		vehicle.InsuranceExpiry = req.InsuranceExpiry
	}
	if req.PUCExpiry != "" {
		vehicle.PUCExpiry = req.PUCExpiry
	}

	updated, err := s.vehicleRepo.Update(ctx, id, vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, updated.RFIDTag)
	return updated, nil
}

func (s *VehicleService) DeleteVehicle(ctx context.Context, id string) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx, vehicle.RFIDTag)
	return nil
}

func (s *VehicleService) invalidateCache(ctx context.Context, rfidTag string) {
	if s.vehicleCache == nil {
		return
	}
	if err := s.vehicleCache.Delete(ctx, rfidTag); err != nil {
		logrus.WithField("error", err).Warn("vehicle cache invalidation failed")
	}
}
