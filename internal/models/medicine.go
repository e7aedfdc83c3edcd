package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MedicineStatusActive  = "active"
	MedicineStatusExpired = "expired"
	MedicineStatusDeleted = "deleted"
)

// MedicineSearchFilter holds search and filter criteria for medicine queries
type MedicineSearchFilter struct {
	Query        string     `json:"query,omitempty"`         // Full-text search across name, generic name, barcode
	Category     *string    `json:"category,omitempty"`      // Filter by category
	LowStockOnly bool       `json:"low_stock_only,omitempty"` // Only medicines at/below minimum stock
	ExpiryBefore *time.Time `json:"expiry_before,omitempty"` // Expiry before date
	ExpiryAfter  *time.Time `json:"expiry_after,omitempty"`  // Expiry after date
	SortBy       string     `json:"sort_by,omitempty"`       // Sort field: name, expiry_date, stock, unit_price
	SortOrder    string     `json:"sort_order,omitempty"`    // Sort order: asc, desc
	Limit        int        `json:"limit,omitempty"`         // Page size (default: 50)
	Offset       int        `json:"offset,omitempty"`        // Page offset
}

type Medicine struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Name         string     `json:"name" db:"name"`
	GenericName  *string    `json:"generic_name" db:"generic_name"`
	Category     *string    `json:"category" db:"category"`
	BatchNumber  *string    `json:"batch_number" db:"batch_number"`
	ExpiryDate   *time.Time `json:"expiry_date" db:"expiry_date"`
	Stock        int        `json:"stock" db:"stock"`
	MinStock     int        `json:"min_stock" db:"min_stock"`
	UnitPrice    float64    `json:"unit_price" db:"unit_price"`
	Barcode      *string    `json:"barcode" db:"barcode"`
	Manufacturer *string    `json:"manufacturer" db:"manufacturer"`
	Status       string     `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// LowOnStock reports whether current stock is at or below the configured minimum.
func (m *Medicine) LowOnStock() bool {
	return m.Stock <= m.MinStock
}
