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

// FineService issues fines for vehicles with expired compliance documents.
// Both the explicit impose-fine request and the scan auto-issuance path go
// through IssueFineIfViolating so violation logic never diverges.
type FineService struct {
	vehicleRepo repository.VehicleRepository
	fineRepo    repository.FineRepository
	tokens      *TokenService
	sender      sms.Sender
	linkBaseURL string
}

func NewFineService(
	vehicleRepo repository.VehicleRepository,
	fineRepo repository.FineRepository,
	tokens *TokenService,
	sender sms.Sender,
	linkBaseURL string,
) *FineService {
	return &FineService{
		vehicleRepo: vehicleRepo,
		fineRepo:    fineRepo,
		tokens:      tokens,
		sender:      sender,
		linkBaseURL: linkBaseURL,
	}
}

// IssueFineResult is the outcome of one issuance attempt. Issued is false
// when the vehicle is fully compliant; nothing was persisted or sent in
// that case.
type IssueFineResult struct {
	Issued      bool               `json:"issued"`
	Vehicle     *models.Vehicle    `json:"-"`
	Fine        *models.Fine       `json:"fine,omitempty"`
	Violations  []models.Violation `json:"violations,omitempty"`
	TotalAmount int                `json:"totalAmount"`
	PaymentLink string             `json:"paymentLink,omitempty"`
}

// IssueFineIfViolating resolves the vehicle by RFID tag, evaluates its
// compliance dates at now, and issues a fine when at least one violation is
// found. The healthy-vehicle path is side-effect free. The owner is notified
// best-effort after the fine is durably written; a notification failure is
// logged and never rolls issuance back.
func (s *FineService) IssueFineIfViolating(ctx context.Context, rfidTag string, now time.Time) (*IssueFineResult, error) {
	vehicle, err := s.vehicleRepo.FindByRFIDTag(ctx, rfidTag)
	if err != nil {
		return nil, err
	}

	violations := EvaluateExpiry(vehicle, now)
	if len(violations) == 0 {
		return &IssueFineResult{Issued: false, Vehicle: vehicle}, nil
	}

	// The token must exist before the fine that references it is written.
	token, err := s.tokens.EnsureToken(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, v := range violations {
		total += v.FineAmount
	}

	fine := &models.Fine{
		VehicleNo:    vehicle.VehicleNo,
		RFIDTag:      vehicle.RFIDTag,
		OwnerName:    vehicle.OwnerName,
		MobileNumber: vehicle.MobileNumber,
		Violations:   violations,
		TotalAmount:  total,
		Status:       models.FineStatusUnpaid,
		Token:        token,
		IssuedAt:     now,
	}

	if _, err := s.fineRepo.Insert(ctx, fine); err != nil {
		return nil, err
	}

	link := s.settlementLink(token)
	s.notifyIssued(ctx, vehicle, total, link)

	return &IssueFineResult{
		Issued:      true,
		Vehicle:     vehicle,
		Fine:        fine,
		Violations:  violations,
		TotalAmount: total,
		PaymentLink: link,
	}, nil
}

func (s *FineService) settlementLink(token string) string {
	return fmt.Sprintf("%s/%s", s.linkBaseURL, token)
}

func (s *FineService) notifyIssued(ctx context.Context, vehicle *models.Vehicle, total int, link string) {
	if s.sender == nil || vehicle.MobileNumber == "" {
		return
	}

	message := fmt.Sprintf(
		"Traffic fine of Rs.%d issued for vehicle %s. Pay online: %s",
		total, vehicle.VehicleNo, link,
	)

	if err := s.sender.Send(ctx, vehicle.MobileNumber, message); err != nil {
		logrus.WithFields(logrus.Fields{
			"vehicle_no": vehicle.VehicleNo,
			"error":      err,
		}).Warn("failed to send fine notification")
	}
}
