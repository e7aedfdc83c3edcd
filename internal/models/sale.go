package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodMobile = "mobile"
)

type Sale struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	TenantID      uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	CustomerID    *uuid.UUID  `json:"customer_id" db:"customer_id"` // walk-in sales have no customer
	CashierID     uuid.UUID   `json:"cashier_id" db:"cashier_id"`
	Total         float64     `json:"total" db:"total"`
	PaymentMethod string      `json:"payment_method" db:"payment_method"`
	Items         []*SaleItem `json:"items,omitempty" db:"-"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}

type SaleItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SaleID     uuid.UUID `json:"sale_id" db:"sale_id"`
	MedicineID uuid.UUID `json:"medicine_id" db:"medicine_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	UnitPrice  float64   `json:"unit_price" db:"unit_price"`
}

// SalesSummary aggregates sales over a reporting window.
type SalesSummary struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	SaleCount  int       `json:"sale_count"`
	TotalValue float64   `json:"total_value"`
	ItemsSold  int       `json:"items_sold"`
}
