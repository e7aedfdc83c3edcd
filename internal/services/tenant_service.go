package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/caching"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
)

const tenantCacheTTL = 5 * time.Minute

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	Update(ctx context.Context, req *UpdateTenantRequest) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cacheSvc   caching.CacheService
}

func NewTenantService(tenantRepo repositories.TenantRepository, cacheSvc caching.CacheService) TenantService {
	return &tenantService{tenantRepo: tenantRepo, cacheSvc: cacheSvc}
}

type CreateTenantRequest struct {
	Name      string `json:"name" validate:"required"`
	Subdomain string `json:"subdomain" validate:"required"`
	License   string `json:"license"`
}

type UpdateTenantRequest struct {
	ID        uuid.UUID
	Name      string `json:"name" validate:"required"`
	Subdomain string `json:"subdomain" validate:"required"`
	License   string `json:"license"`
	Status    string `json:"status" validate:"required"`
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	req.Subdomain = strings.ToLower(strings.TrimSpace(req.Subdomain))
	if err := common.ValidateSubdomain(req.Subdomain); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      req.Name,
		Subdomain: req.Subdomain,
		License:   req.License,
		Status:    models.TenantStatusActive,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	if subdomain == "" {
		return nil, errors.New("subdomain is required")
	}
	if s.cacheSvc != nil {
		if cached, err := s.cacheSvc.GetTenantBySubdomain(ctx, subdomain); err == nil && cached != nil {
			return cached, nil
		}
	}
	tenant, err := s.tenantRepo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.SetTenantBySubdomain(ctx, tenant, tenantCacheTTL)
	}
	return tenant, nil
}

func (s *tenantService) Update(ctx context.Context, req *UpdateTenantRequest) error {
	existing, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	oldSubdomain := existing.Subdomain
	existing.Name = req.Name
	existing.Subdomain = req.Subdomain
	existing.License = req.License
	existing.Status = req.Status

	if err := s.tenantRepo.Update(ctx, existing); err != nil {
		return err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeleteTenantBySubdomain(ctx, oldSubdomain)
		if existing.Status != models.TenantStatusActive {
			// Suspension or deletion: cached medicines and reports must
			// not outlive the tenant's access.
			_ = s.cacheSvc.InvalidateTenantCache(ctx, existing.ID)
		}
	}
	return nil
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenantRepo.List(ctx, limit, offset)
}
