// Package ops holds the operational tasks the support team runs against a
// live deployment: password resets, tenant/user consistency checks, and
// cascading tenant soft-deletes.
package ops

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrUserNotFound   = errors.New("user not found")
)

type PasswordResetter struct {
	tenantRepo repositories.TenantRepository
	userRepo   repositories.UserRepository
}

func NewPasswordResetter(tenantRepo repositories.TenantRepository, userRepo repositories.UserRepository) *PasswordResetter {
	return &PasswordResetter{tenantRepo: tenantRepo, userRepo: userRepo}
}

// Reset replaces the password of a tenant's user, addressed by subdomain and
// email the way support tickets identify accounts.
func (r *PasswordResetter) Reset(ctx context.Context, subdomain, email, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	tenant, err := r.tenantRepo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTenantNotFound
		}
		return err
	}

	user, err := r.userRepo.GetByEmail(ctx, tenant.ID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Status != models.UserStatusActive {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := r.userRepo.UpdatePassword(ctx, tenant.ID, user.ID, string(hash)); err != nil {
		return err
	}

	log.Printf("ops: password reset for %s@%s", user.Email, tenant.Subdomain)
	return nil
}
