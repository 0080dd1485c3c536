package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"enforcement-backend/internal/models"
	"enforcement-backend/internal/repository"
)

const tokenEntropyBytes = 24

// TokenService issues the per-vehicle access token used both for owner
// self-service and as the join key between a vehicle and its fines. A token,
// once assigned, never changes for the vehicle's lifetime.
type TokenService struct {
	vehicleRepo repository.VehicleRepository
}

func NewTokenService(vehicleRepo repository.VehicleRepository) *TokenService {
	return &TokenService{
		vehicleRepo: vehicleRepo,
	}
}

// EnsureToken returns the vehicle's access token, generating and persisting
// one if it has none yet. The persist is conditional on the token still
// being unset, so concurrent first-fine callers converge on one value; the
// caller's copy of the vehicle is updated with whichever token won.
func (s *TokenService) EnsureToken(ctx context.Context, vehicle *models.Vehicle) (string, error) {
	if vehicle.AccessToken != "" {
		return vehicle.AccessToken, nil
	}

	token, err := generateAccessToken()
	if err != nil {
		return "", err
	}

	winner, err := s.vehicleRepo.SetAccessTokenIfUnset(ctx, vehicle.ID.Hex(), token)
	if err != nil {
		return "", fmt.Errorf("failed to persist access token: %w", err)
	}

	vehicle.AccessToken = winner
	return winner, nil
}

func generateAccessToken() (string, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
