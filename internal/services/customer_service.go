package services

import (
	"context"
	"errors"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, req *UpdateCustomerRequest) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error)
	Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
}

func NewCustomerService(customerRepo repositories.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

type CreateCustomerRequest struct {
	TenantID uuid.UUID `json:"-"`
	Name     string    `json:"name" validate:"required"`
	Phone    *string   `json:"phone"`
	Email    *string   `json:"email"`
	Address  *string   `json:"address"`
}

type UpdateCustomerRequest struct {
	TenantID uuid.UUID `json:"-"`
	ID       uuid.UUID `json:"-"`
	Name     string    `json:"name" validate:"required"`
	Phone    *string   `json:"phone"`
	Email    *string   `json:"email"`
	Address  *string   `json:"address"`
}

func (s *customerService) Create(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}

	customer := &models.Customer{
		ID:       uuid.New(),
		TenantID: req.TenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Status:   models.CustomerStatusActive,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, tenantID, id)
}

func (s *customerService) Update(ctx context.Context, req *UpdateCustomerRequest) error {
	existing, err := s.customerRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Phone = req.Phone
	existing.Email = req.Email
	existing.Address = req.Address

	return s.customerRepo.Update(ctx, existing)
}

func (s *customerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.customerRepo.SoftDelete(ctx, tenantID, id)
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.customerRepo.List(ctx, tenantID, limit, offset)
}

func (s *customerService) Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error) {
	if query == "" {
		return s.List(ctx, tenantID, limit, offset)
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.customerRepo.Search(ctx, tenantID, query, limit, offset)
}
