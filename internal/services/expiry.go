package services

import (
	"time"

	"enforcement-backend/internal/models"
)

// Violation types and their fixed fine amounts in currency units.
const (
	ViolationInsuranceExpired = "Insurance Expired"
	ViolationPUCExpired       = "PUC Expired"

	InsuranceFineAmount = 1000
	PUCFineAmount       = 500
)

const expiryDateLayout = "2006-01-02"

// EvaluateExpiry checks the vehicle's compliance dates against now and
// returns the violations in fixed order: insurance first, then PUC. A date
// that fails to parse counts as unknown, not expired, so it contributes no
// violation. When everything is in order the result is empty; no generic
// fallback violation is ever synthesized.
//
// Pure function, safe for concurrent use.
func EvaluateExpiry(vehicle *models.Vehicle, now time.Time) []models.Violation {
	var violations []models.Violation

	if dateExpired(vehicle.InsuranceExpiry, now) {
		violations = append(violations, models.Violation{
			Type:       ViolationInsuranceExpired,
			ExpiredOn:  vehicle.InsuranceExpiry,
			FineAmount: InsuranceFineAmount,
		})
	}

	if dateExpired(vehicle.PUCExpiry, now) {
		violations = append(violations, models.Violation{
			Type:       ViolationPUCExpired,
			ExpiredOn:  vehicle.PUCExpiry,
			FineAmount: PUCFineAmount,
		})
	}

	return violations
}

func dateExpired(raw string, now time.Time) bool {
	expiry, err := time.Parse(expiryDateLayout, raw)
	if err != nil {
		// Unknown date, deliberately lenient.
		return false
	}
	return expiry.Before(now)
}
