package services

import (
	"context"
	"fmt"
	"time"

	"enforcement-backend/internal/models"
	"enforcement-backend/internal/repository"
	"enforcement-backend/pkg/sms"

	"github.com/sirupsen/logrus"
)

const DefaultPaymentMethod = "upi"

// SettlementService transitions fines to paid and serves the owner-facing
// fine listing, both keyed by the vehicle's access token.
type SettlementService struct {
	fineRepo    repository.FineRepository
	vehicleRepo repository.VehicleRepository
	sender      sms.Sender
}

func NewSettlementService(
	fineRepo repository.FineRepository,
	vehicleRepo repository.VehicleRepository,
	sender sms.Sender,
) *SettlementService {
	return &SettlementService{
		fineRepo:    fineRepo,
		vehicleRepo: vehicleRepo,
		sender:      sender,
	}
}

type SettlementResult struct {
	TotalPaid    int   `json:"totalPaid"`
	FinesCleared int64 `json:"finesCleared"`
}

// Settle transitions every unpaid fine under token to PAID and returns the
// total cleared. The update re-checks the UNPAID status at write time, so
// of two concurrent calls exactly one clears the fines and the other gets
// ErrNothingToSettle; an immediate repeat call gets ErrNothingToSettle too.
func (s *SettlementService) Settle(ctx context.Context, token, paymentMethod string) (*SettlementResult, error) {
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	fines, err := s.fineRepo.FindUnpaidByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(fines) == 0 {
		return nil, ErrNothingToSettle
	}

	total := 0
	for _, fine := range fines {
		total += fine.Total()
	}

	cleared, err := s.fineRepo.MarkPaidByToken(ctx, token, paymentMethod, time.Now())
	if err != nil {
		return nil, err
	}
	if cleared == 0 {
		// A concurrent settlement cleared these fines between our read and
		// write.
		return nil, ErrNothingToSettle
	}

	s.notifySettled(ctx, token, total)

	return &SettlementResult{
		TotalPaid:    total,
		FinesCleared: cleared,
	}, nil
}

type FineListing struct {
	Fines       []*models.Fine `json:"fines"`
	TotalUnpaid int            `json:"totalUnpaid"`
}

// ListFines returns every fine under token together with the outstanding
// total. Read-only.
func (s *SettlementService) ListFines(ctx context.Context, token string) (*FineListing, error) {
	fines, err := s.fineRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(fines) == 0 {
		return nil, ErrTokenNotFound
	}

	totalUnpaid := 0
	for _, fine := range fines {
		if fine.Status == models.FineStatusUnpaid {
			totalUnpaid += fine.Total()
		}
	}

	return &FineListing{
		Fines:       fines,
		TotalUnpaid: totalUnpaid,
	}, nil
}

func (s *SettlementService) notifySettled(ctx context.Context, token string, total int) {
	if s.sender == nil {
		return
	}

	vehicle, err := s.vehicleRepo.FindByAccessToken(ctx, token)
	if err != nil {
		logrus.WithField("error", err).Warn("could not resolve vehicle for payment confirmation")
		return
	}
	if vehicle.MobileNumber == "" {
		return
	}

	message := fmt.Sprintf(
		"Payment of Rs.%d received for vehicle %s. All pending fines are cleared.",
		total, vehicle.VehicleNo,
	)

	if err := s.sender.Send(ctx, vehicle.MobileNumber, message); err != nil {
		logrus.WithFields(logrus.Fields{
			"vehicle_no": vehicle.VehicleNo,
			"error":      err,
		}).Warn("failed to send payment confirmation")
	}
}
