package ops

import (
	"context"
	"log"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
)

// ConsistencyReport summarizes one tenant/user audit pass.
type ConsistencyReport struct {
	TenantsChecked  int
	ActiveTenants   int
	OrphanedUsers   []*models.User
	TenantsNoAdmin  []uuid.UUID
}

type ConsistencyChecker struct {
	tenantRepo repositories.TenantRepository
	userRepo   repositories.UserRepository
}

func NewConsistencyChecker(tenantRepo repositories.TenantRepository, userRepo repositories.UserRepository) *ConsistencyChecker {
	return &ConsistencyChecker{tenantRepo: tenantRepo, userRepo: userRepo}
}

// Run finds active users whose tenant is missing or soft-deleted, and active
// tenants that have no admin user left. It only reports; fixing is a
// deliberate second step.
func (c *ConsistencyChecker) Run(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{}

	orphans, err := c.userRepo.ListOrphaned(ctx)
	if err != nil {
		return nil, err
	}
	report.OrphanedUsers = orphans

	tenants, err := c.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		return nil, err
	}
	report.TenantsChecked = len(tenants)

	for _, tenant := range tenants {
		if tenant.Status != models.TenantStatusActive {
			continue
		}
		report.ActiveTenants++

		users, err := c.userRepo.List(ctx, tenant.ID, 1000, 0)
		if err != nil {
			return nil, err
		}
		hasAdmin := false
		for _, user := range users {
			if user.Role == models.UserRoleAdmin {
				hasAdmin = true
				break
			}
		}
		if !hasAdmin {
			report.TenantsNoAdmin = append(report.TenantsNoAdmin, tenant.ID)
		}
	}

	log.Printf("ops: consistency check done: %d tenants, %d orphaned users, %d tenants without admin",
		report.TenantsChecked, len(report.OrphanedUsers), len(report.TenantsNoAdmin))
	return report, nil
}
