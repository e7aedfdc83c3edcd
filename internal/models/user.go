package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserRoleAdmin      = "admin"
	UserRolePharmacist = "pharmacist"
	UserRoleCashier    = "cashier"

	UserStatusActive  = "active"
	UserStatusDeleted = "deleted"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
