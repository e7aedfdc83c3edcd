package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/caching"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/middleware"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.Tenant, *models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	tenantSvc  TenantService
	cacheSvc   caching.CacheService
	jwtSecret  []byte
}

func NewAuthService(userRepo repositories.UserRepository, tenantRepo repositories.TenantRepository, tenantSvc TenantService, cacheSvc caching.CacheService, jwtSecret string) AuthService {
	return &authService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		tenantSvc:  tenantSvc,
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
	}
}

type SignupRequest struct {
	PharmacyName string `json:"pharmacy_name" validate:"required"`
	Subdomain    string `json:"subdomain" validate:"required"`
	License      string `json:"license"`
	AdminName    string `json:"admin_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Subdomain string `json:"subdomain" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Signup registers a pharmacy tenant together with its admin user.
func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.Tenant, *models.User, error) {
	if len(req.Password) < 8 {
		return nil, nil, errors.New("password must be at least 8 characters")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, nil, errors.New("email is required")
	}

	tenant, err := s.tenantSvc.Create(ctx, &CreateTenantRequest{
		Name:      req.PharmacyName,
		Subdomain: req.Subdomain,
		License:   req.License,
	})
	if err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Name:         req.AdminName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	return tenant, user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*TokenPair, error) {
	tenant, err := s.tenantRepo.GetBySubdomain(ctx, req.Subdomain)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if tenant.Status != models.TenantStatusActive {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, tenant.ID, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	key := "pharmacy:refresh:" + refreshToken
	stored, err := s.cacheSvc.GetString(ctx, key)
	if err != nil || stored == "" {
		return nil, ErrInvalidCredentials
	}

	parts := strings.SplitN(stored, "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCredentials
	}
	tenantID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	userID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, tenantID, userID)
	if err != nil || user.Status != models.UserStatusActive {
		return nil, ErrInvalidCredentials
	}

	// Rotate: the old refresh token is single-use.
	_ = s.cacheSvc.Delete(ctx, key)
	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	claims := &middleware.JWTCustomClaims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refresh := random.String(48)
	value := fmt.Sprintf("%s|%s", user.TenantID, user.ID)
	if err := s.cacheSvc.SetString(ctx, "pharmacy:refresh:"+refresh, value, refreshTokenTTL); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
	}, nil
}
