package repository

import (
	"context"
	"sync"
	"time"

	"enforcement-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository implementations with the same predicate semantics as
// the Mongo ones (conditional token assignment, guarded bulk settle). Service
// and handler tests run against these instead of a live database.

type MemoryVehicleRepository struct {
	mu       sync.Mutex
	vehicles map[string]*models.Vehicle

	// TokenWrites counts SetAccessTokenIfUnset calls that actually wrote.
	TokenWrites int
}

func NewMemoryVehicleRepository() *MemoryVehicleRepository {
	return &MemoryVehicleRepository{
		vehicles: make(map[string]*models.Vehicle),
	}
}

func (r *MemoryVehicleRepository) Create(_ context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	clone := *vehicle
	r.vehicles[vehicle.ID.Hex()] = &clone
	return vehicle, nil
}

func (r *MemoryVehicleRepository) FindByID(_ context.Context, id string) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	clone := *vehicle
	return &clone, nil
}

func (r *MemoryVehicleRepository) FindByRFIDTag(_ context.Context, rfidTag string) (*models.Vehicle, error) {
	return r.findBy(func(v *models.Vehicle) bool { return v.RFIDTag == rfidTag })
}

func (r *MemoryVehicleRepository) FindByVehicleNo(_ context.Context, vehicleNo string) (*models.Vehicle, error) {
	return r.findBy(func(v *models.Vehicle) bool { return v.VehicleNo == vehicleNo })
}

func (r *MemoryVehicleRepository) FindByAccessToken(_ context.Context, token string) (*models.Vehicle, error) {
	return r.findBy(func(v *models.Vehicle) bool { return v.AccessToken != "" && v.AccessToken == token })
}

func (r *MemoryVehicleRepository) findBy(match func(*models.Vehicle) bool) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, vehicle := range r.vehicles {
		if match(vehicle) {
			clone := *vehicle
			return &clone, nil
		}
	}
	return nil, ErrVehicleNotFound
}

func (r *MemoryVehicleRepository) FindAll(_ context.Context) ([]*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vehicles := make([]*models.Vehicle, 0, len(r.vehicles))
	for _, vehicle := range r.vehicles {
		clone := *vehicle
		vehicles = append(vehicles, &clone)
	}
	return vehicles, nil
}

func (r *MemoryVehicleRepository) Update(_ context.Context, id string, vehicle *models.Vehicle) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[id]; !ok {
		return nil, ErrVehicleNotFound
	}
	vehicle.UpdatedAt = time.Now()
	clone := *vehicle
	r.vehicles[id] = &clone
	return vehicle, nil
}

func (r *MemoryVehicleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[id]; !ok {
		return ErrVehicleNotFound
	}
	delete(r.vehicles, id)
	return nil
}

func (r *MemoryVehicleRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.vehicles)), nil
}

func (r *MemoryVehicleRepository) SetAccessTokenIfUnset(_ context.Context, id string, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vehicle, ok := r.vehicles[id]
	if !ok {
		return "", ErrVehicleNotFound
	}
	if vehicle.AccessToken != "" {
		return vehicle.AccessToken, nil
	}
	vehicle.AccessToken = token
	vehicle.UpdatedAt = time.Now()
	r.TokenWrites++
	return token, nil
}

type MemoryAdminRepository struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{
		admins: make(map[string]*models.Admin),
	}
}

func (r *MemoryAdminRepository) Create(_ context.Context, admin *models.Admin) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	clone := *admin
	r.admins[admin.ID.Hex()] = &clone
	return admin, nil
}

func (r *MemoryAdminRepository) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, admin := range r.admins {
		if admin.Username == username {
			clone := *admin
			return &clone, nil
		}
	}
	return nil, ErrAdminNotFound
}

func (r *MemoryAdminRepository) FindByID(_ context.Context, id string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[id]
	if !ok {
		return nil, ErrAdminNotFound
	}
	clone := *admin
	return &clone, nil
}

func (r *MemoryAdminRepository) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[id]
	if !ok {
		return ErrAdminNotFound
	}
	now := time.Now()
	admin.LastLogin = &now
	return nil
}

type MemoryFineRepository struct {
	mu    sync.Mutex
	fines []*models.Fine
}

func NewMemoryFineRepository() *MemoryFineRepository {
	return &MemoryFineRepository{}
}

func (r *MemoryFineRepository) Insert(_ context.Context, fine *models.Fine) (*models.Fine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fine.ID.IsZero() {
		fine.ID = primitive.NewObjectID()
	}
	clone := *fine
	r.fines = append(r.fines, &clone)
	return fine, nil
}

func (r *MemoryFineRepository) FindByToken(_ context.Context, token string) ([]*models.Fine, error) {
	return r.filter(func(f *models.Fine) bool { return f.Token == token })
}

func (r *MemoryFineRepository) FindUnpaidByToken(_ context.Context, token string) ([]*models.Fine, error) {
	return r.filter(func(f *models.Fine) bool {
		return f.Token == token && f.Status == models.FineStatusUnpaid
	})
}

func (r *MemoryFineRepository) filter(match func(*models.Fine) bool) ([]*models.Fine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Fine
	for _, fine := range r.fines {
		if match(fine) {
			clone := *fine
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *MemoryFineRepository) MarkPaidByToken(_ context.Context, token, paymentMethod string, paidAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var modified int64
	for _, fine := range r.fines {
		if fine.Token == token && fine.Status == models.FineStatusUnpaid {
			fine.Status = models.FineStatusPaid
			at := paidAt
			fine.PaidAt = &at
			fine.PaymentMethod = paymentMethod
			modified++
		}
	}
	return modified, nil
}

func (r *MemoryFineRepository) CountByStatus(_ context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, fine := range r.fines {
		if fine.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *MemoryFineRepository) CollectionStatistics(_ context.Context) (*CollectionStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &CollectionStatistics{}
	for _, fine := range r.fines {
		stats.TotalFines++
		switch fine.Status {
		case models.FineStatusPaid:
			stats.PaidFines++
			stats.AmountCollected += int64(fine.Total())
		case models.FineStatusUnpaid:
			stats.UnpaidFines++
			stats.AmountOutstanding += int64(fine.Total())
		}
	}
	return stats, nil
}
