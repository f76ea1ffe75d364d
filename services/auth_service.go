package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/repositories"
)

const (
	bcryptCost     = 12
	minPasswordLen = 8
	tokenLifetime  = 24 * time.Hour
)

type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*models.StaffUser, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	staffRepo repositories.StaffRepository
	jwtSecret []byte
}

func NewAuthService(staffRepo repositories.StaffRepository, jwtSecret string) AuthService {
	return &authService{staffRepo: staffRepo, jwtSecret: []byte(jwtSecret)}
}

func (s *authService) Register(ctx context.Context, email, password, role string) (*models.StaffUser, error) {
	if email == "" || password == "" {
		return nil, ErrValidationFailed
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if role == "" {
		role = "staff"
	}
	if role != "staff" && role != "admin" {
		return nil, ErrUnknownRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.StaffUser{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.staffRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrStaffEmailConflict) {
			return nil, ErrStaffEmailConflict
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrStaffNotFound) {
			return "", ErrAuthInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrAuthInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
