package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"enforcement-backend/internal/models"
	"enforcement-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settlementFixture struct {
	vehicleRepo *repository.MemoryVehicleRepository
	fineRepo    *repository.MemoryFineRepository
	sender      *recordingSender
	fines       *FineService
	settlement  *SettlementService
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	vehicleRepo := repository.NewMemoryVehicleRepository()
	fineRepo := repository.NewMemoryFineRepository()
	sender := &recordingSender{}
	tokens := NewTokenService(vehicleRepo)

	return &settlementFixture{
		vehicleRepo: vehicleRepo,
		fineRepo:    fineRepo,
		sender:      sender,
		fines:       NewFineService(vehicleRepo, fineRepo, tokens, sender, "https://fines.example.com/pay"),
		settlement:  NewSettlementService(fineRepo, vehicleRepo, sender),
	}
}

// issueFine registers a vehicle with an expired insurance policy and issues a
// fine against it, returning the fine's settlement token.
func (f *settlementFixture) issueFine(t *testing.T, rfidTag string, at time.Time) string {
	t.Helper()

	if _, err := f.vehicleRepo.FindByRFIDTag(context.Background(), rfidTag); err != nil {
		_, err := f.vehicleRepo.Create(context.Background(), &models.Vehicle{
			VehicleNo:       "KA10ZZ" + rfidTag,
			RFIDTag:         rfidTag,
			MobileNumber:    "9999999999",
			InsuranceExpiry: "2000-01-01",
			PUCExpiry:       "2999-01-01",
		})
		require.NoError(t, err)
	}

	result, err := f.fines.IssueFineIfViolating(context.Background(), rfidTag, at)
	require.NoError(t, err)
	require.True(t, result.Issued)
	return result.Fine.Token
}

func TestSettleClearsAllUnpaidFines(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.issueFine(t, "S1", issueNow)

	// A later inspection caught the PUC lapse under the same token.
	_, err := f.fineRepo.Insert(context.Background(), &models.Fine{
		VehicleNo: "KA10ZZS1",
		RFIDTag:   "S1",
		Token:     token,
		Status:    models.FineStatusUnpaid,
		Violations: []models.Violation{
			{Type: ViolationPUCExpired, FineAmount: PUCFineAmount},
		},
		TotalAmount: PUCFineAmount,
		IssuedAt:    issueNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	result, err := f.settlement.Settle(context.Background(), token, "card")
	require.NoError(t, err)
	assert.Equal(t, 1500, result.TotalPaid)
	assert.Equal(t, int64(2), result.FinesCleared)

	fines, err := f.fineRepo.FindByToken(context.Background(), token)
	require.NoError(t, err)
	require.Len(t, fines, 2)
	for _, fine := range fines {
		assert.Equal(t, models.FineStatusPaid, fine.Status)
		assert.Equal(t, "card", fine.PaymentMethod)
		require.NotNil(t, fine.PaidAt)
	}
}

func TestSettleDefaultsPaymentMethod(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.issueFine(t, "S2", issueNow)

	_, err := f.settlement.Settle(context.Background(), token, "")
	require.NoError(t, err)

	fines, err := f.fineRepo.FindByToken(context.Background(), token)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	assert.Equal(t, DefaultPaymentMethod, fines[0].PaymentMethod)
}

func TestSettleRepeatedCallReportsNothingToSettle(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.issueFine(t, "S3", issueNow)

	_, err := f.settlement.Settle(context.Background(), token, "")
	require.NoError(t, err)

	_, err = f.settlement.Settle(context.Background(), token, "")
	assert.ErrorIs(t, err, ErrNothingToSettle)
}

func TestSettleUnknownToken(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.settlement.Settle(context.Background(), "no-such-token", "")
	assert.ErrorIs(t, err, ErrNothingToSettle)
}

func TestSettleConcurrentCallsExactlyOneWins(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.issueFine(t, "S4", issueNow)
	f.issueFine(t, "S4", issueNow.Add(time.Hour))

	const callers = 8
	results := make([]*SettlementResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.settlement.Settle(context.Background(), token, "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		if errs[i] == nil {
			winners++
			assert.Equal(t, 2000, results[i].TotalPaid)
			assert.Equal(t, int64(2), results[i].FinesCleared)
		} else {
			assert.ErrorIs(t, errs[i], ErrNothingToSettle)
		}
	}
	assert.Equal(t, 1, winners)

	unpaid, err := f.fineRepo.CountByStatus(context.Background(), models.FineStatusUnpaid)
	require.NoError(t, err)
	assert.Zero(t, unpaid)
}

func TestListFinesUnknownToken(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.settlement.ListFines(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestListFinesOutstandingTotalExcludesPaid(t *testing.T) {
	f := newSettlementFixture(t)
	token := f.issueFine(t, "S5", issueNow)

	_, err := f.settlement.Settle(context.Background(), token, "")
	require.NoError(t, err)

	f.issueFine(t, "S5", issueNow.Add(24*time.Hour))

	listing, err := f.settlement.ListFines(context.Background(), token)
	require.NoError(t, err)
	assert.Len(t, listing.Fines, 2)
	assert.Equal(t, 1000, listing.TotalUnpaid)
}

func TestListFinesRecomputesLegacyTotals(t *testing.T) {
	f := newSettlementFixture(t)

	// Records written before total_amount was denormalized carry only the
	// violation breakdown.
	_, err := f.fineRepo.Insert(context.Background(), &models.Fine{
		VehicleNo: "KA11AA0001",
		Token:     "legacy-token",
		Status:    models.FineStatusUnpaid,
		Violations: []models.Violation{
			{Type: ViolationInsuranceExpired, FineAmount: InsuranceFineAmount},
			{Type: ViolationPUCExpired, FineAmount: PUCFineAmount},
		},
		IssuedAt: issueNow,
	})
	require.NoError(t, err)

	listing, err := f.settlement.ListFines(context.Background(), "legacy-token")
	require.NoError(t, err)
	assert.Equal(t, 1500, listing.TotalUnpaid)

	// Settlement recomputes the same way.
	settled, err := f.settlement.Settle(context.Background(), "legacy-token", "")
	require.NoError(t, err)
	assert.Equal(t, 1500, settled.TotalPaid)
}

// TestScanToSettlementLifecycle drives the full flow: register, scan an
// expired vehicle, list the resulting fine by token, settle it, and confirm
// the records end up paid.
func TestScanToSettlementLifecycle(t *testing.T) {
	f := newSettlementFixture(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.vehicleRepo.Create(context.Background(), &models.Vehicle{
		VehicleNo:       "MH12DE1433",
		RFIDTag:         "T1",
		OwnerName:       "Ravi Kumar",
		MobileNumber:    "9876543210",
		InsuranceExpiry: "2000-01-01",
		PUCExpiry:       "2999-01-01",
	})
	require.NoError(t, err)

	issued, err := f.fines.IssueFineIfViolating(context.Background(), "T1", now)
	require.NoError(t, err)
	require.True(t, issued.Issued)
	assert.Equal(t, 1000, issued.TotalAmount)

	listing, err := f.settlement.ListFines(context.Background(), issued.Fine.Token)
	require.NoError(t, err)
	assert.Equal(t, 1000, listing.TotalUnpaid)

	settled, err := f.settlement.Settle(context.Background(), issued.Fine.Token, "upi")
	require.NoError(t, err)
	assert.Equal(t, 1000, settled.TotalPaid)
	assert.Equal(t, int64(1), settled.FinesCleared)

	after, err := f.settlement.ListFines(context.Background(), issued.Fine.Token)
	require.NoError(t, err)
	assert.Zero(t, after.TotalUnpaid)
	require.Len(t, after.Fines, 1)
	assert.Equal(t, models.FineStatusPaid, after.Fines[0].Status)

	// Owner got both the issuance and the confirmation message.
	assert.Len(t, f.sender.sent(), 2)
}
