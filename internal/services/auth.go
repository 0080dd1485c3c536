package services

import (
	"context"

	"enforcement-backend/internal/models"
	"enforcement-backend/internal/repository"
	"enforcement-backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates administrative staff against the admins
// collection. The enforcement core itself assumes callers are already
// authorized; this only guards the admin surface.
type AuthService struct {
	adminRepo repository.AdminRepository
	jwtUtil   *jwt.JWTUtil
}

func NewAuthService(adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{
		adminRepo: adminRepo,
		jwtUtil:   jwt.NewJWTUtil(),
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Admin *models.AuthAdmin `json:"admin"`
	Token string            `json:"token"`
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Informational only; login still succeeds if this write fails.
	_ = s.adminRepo.UpdateLastLogin(ctx, admin.ID.Hex())

	token, err := s.jwtUtil.GenerateToken(admin.ID.Hex(), admin.Username, admin.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Admin: &models.AuthAdmin{
			ID:       admin.ID.Hex(),
			Username: admin.Username,
			Role:     admin.Role,
		},
		Token: token,
	}, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
