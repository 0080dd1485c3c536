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

// countingCache is a map-backed VehicleCache that records hits and misses.
type countingCache struct {
	mu      sync.Mutex
	entries map[string]*models.Vehicle
	gets    int
	sets    int
	deletes int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[string]*models.Vehicle)}
}

func (c *countingCache) GetVehicle(_ context.Context, key string) (*models.Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if v, ok := c.entries[key]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, nil
}

func (c *countingCache) SetVehicle(_ context.Context, key string, vehicle *models.Vehicle, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	clone := *vehicle
	c.entries[key] = &clone
	return nil
}

func (c *countingCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *countingCache) HealthCheck(context.Context) error { return nil }
func (c *countingCache) Close() error                      { return nil }

func newVehicleFixture(t *testing.T) (*VehicleService, *repository.MemoryVehicleRepository) {
	t.Helper()
	repo := repository.NewMemoryVehicleRepository()
	return NewVehicleService(repo), repo
}

func TestCreateVehicle(t *testing.T) {
	svc, _ := newVehicleFixture(t)

	vehicle, err := svc.CreateVehicle(context.Background(), &CreateVehicleRequest{
		VehicleNo:       "MH12DE1433",
		RFIDTag:         "T1",
		OwnerName:       "Ravi Kumar",
		MobileNumber:    "9876543210",
		InsuranceExpiry: "2025-06-01",
		PUCExpiry:       "2025-12-01",
	})
	require.NoError(t, err)
	assert.False(t, vehicle.ID.IsZero())
	assert.Equal(t, "2025-06-01", vehicle.InsuranceExpiry)
	assert.Empty(t, vehicle.AccessToken)
}

func TestCreateVehicleRejectsDuplicates(t *testing.T) {
	svc, _ := newVehicleFixture(t)

	_, err := svc.CreateVehicle(context.Background(), &CreateVehicleRequest{
		VehicleNo: "MH12DE1433",
		RFIDTag:   "T1",
		OwnerName: "Ravi Kumar",
	})
	require.NoError(t, err)

	_, err = svc.CreateVehicle(context.Background(), &CreateVehicleRequest{
		VehicleNo: "KA01AB1234",
		RFIDTag:   "T1",
		OwnerName: "Someone Else",
	})
	assert.ErrorContains(t, err, "RFID tag already registered")

	_, err = svc.CreateVehicle(context.Background(), &CreateVehicleRequest{
		VehicleNo: "MH12DE1433",
		RFIDTag:   "T2",
		OwnerName: "Someone Else",
	})
	assert.ErrorContains(t, err, "vehicle number already registered")
}

func TestGetVehicleByRFIDTagPopulatesCache(t *testing.T) {
	svc, _ := newVehicleFixture(t)
	cache := newCountingCache()
	svc.SetVehicleCache(cache)

	_, err := svc.CreateVehicle(context.Background(), &CreateVehicleRequest{
		VehicleNo: "MH12DE1433",
		RFIDTag:   "T1",
		OwnerName: "Ravi Kumar",
	})
	require.NoError(t, err)

	first, err := svc.GetVehicleByRFIDTag(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.GetVehicleByRFIDTag(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, first.VehicleNo, second.VehicleNo)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets, "second lookup should be a cache hit")
}

func TestUpdateVehicleInvalidatesCache(t *testing.T) {
	svc, _ := newVehicleFixture(t)
	cache := newCountingCache()
	svc.SetVehicleCache(cache)

	created, err := svc.CreateVehicle(context.Background(), &CreateVehicleRequest{
		VehicleNo: "MH12DE1433",
		RFIDTag:   "T1",
		OwnerName: "Ravi Kumar",
	})
	require.NoError(t, err)

	_, err = svc.GetVehicleByRFIDTag(context.Background(), "T1")
	require.NoError(t, err)

	updated, err := svc.UpdateVehicle(context.Background(), created.ID.Hex(), &UpdateVehicleRequest{
		OwnerName: "Ravi K Kumar",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K Kumar", updated.OwnerName)
	assert.Equal(t, 1, cache.deletes)

	// Next lookup sees the new owner name, not the stale cached record.
	fresh, err := svc.GetVehicleByRFIDTag(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "Ravi K Kumar", fresh.OwnerName)
}

func TestDeleteVehicle(t *testing.T) {
	svc, repo := newVehicleFixture(t)

	created, err := svc.CreateVehicle(context.Background(), &CreateVehicleRequest{
		VehicleNo: "MH12DE1433",
		RFIDTag:   "T1",
		OwnerName: "Ravi Kumar",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVehicle(context.Background(), created.ID.Hex()))

	_, err = repo.FindByID(context.Background(), created.ID.Hex())
	assert.ErrorIs(t, err, repository.ErrVehicleNotFound)
}

func TestDeleteUnknownVehicle(t *testing.T) {
	svc, _ := newVehicleFixture(t)

	err := svc.DeleteVehicle(context.Background(), "000000000000000000000000")
	assert.ErrorIs(t, err, repository.ErrVehicleNotFound)
}
