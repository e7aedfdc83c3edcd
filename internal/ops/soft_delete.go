package ops

import (
	"context"
	"errors"
	"log"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CascadeResult counts the rows touched by one cascading soft-delete.
type CascadeResult struct {
	TenantID      uuid.UUID
	Users         int64
	Medicines     int64
	Customers     int64
	Prescriptions int64
}

// CascadeRepo is the slice of a repository the cascade needs. Every
// tenant-scoped repository satisfies it.
type CascadeRepo interface {
	SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type TenantDeleter struct {
	tenantRepo       repositories.TenantRepository
	userRepo         CascadeRepo
	medicineRepo     CascadeRepo
	customerRepo     CascadeRepo
	prescriptionRepo CascadeRepo
}

func NewTenantDeleter(
	tenantRepo repositories.TenantRepository,
	userRepo, medicineRepo, customerRepo, prescriptionRepo CascadeRepo,
) *TenantDeleter {
	return &TenantDeleter{
		tenantRepo:       tenantRepo,
		userRepo:         userRepo,
		medicineRepo:     medicineRepo,
		customerRepo:     customerRepo,
		prescriptionRepo: prescriptionRepo,
	}
}

// SoftDelete deactivates a tenant and everything scoped to it. Rows are
// marked deleted, never removed; sales stay untouched as the financial
// record.
func (d *TenantDeleter) SoftDelete(ctx context.Context, tenantID uuid.UUID) (*CascadeResult, error) {
	tenant, err := d.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if tenant.Status == models.TenantStatusDeleted {
		return nil, errors.New("tenant is already deleted")
	}

	if err := d.tenantRepo.SoftDelete(ctx, tenantID); err != nil {
		return nil, err
	}

	result := &CascadeResult{TenantID: tenantID}
	if result.Users, err = d.userRepo.SoftDeleteByTenant(ctx, tenantID); err != nil {
		return result, err
	}
	if result.Medicines, err = d.medicineRepo.SoftDeleteByTenant(ctx, tenantID); err != nil {
		return result, err
	}
	if result.Customers, err = d.customerRepo.SoftDeleteByTenant(ctx, tenantID); err != nil {
		return result, err
	}
	if result.Prescriptions, err = d.prescriptionRepo.SoftDeleteByTenant(ctx, tenantID); err != nil {
		return result, err
	}

	log.Printf("ops: soft-deleted tenant %s (%d users, %d medicines, %d customers, %d prescriptions)",
		tenant.Subdomain, result.Users, result.Medicines, result.Customers, result.Prescriptions)
	return result, nil
}
