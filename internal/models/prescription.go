package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PrescriptionStatusPending   = "pending"
	PrescriptionStatusDispensed = "dispensed"
	PrescriptionStatusDeleted   = "deleted"
)

type Prescription struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	TenantID    uuid.UUID           `json:"tenant_id" db:"tenant_id"`
	CustomerID  uuid.UUID           `json:"customer_id" db:"customer_id"`
	DoctorName  string              `json:"doctor_name" db:"doctor_name"`
	Notes       *string             `json:"notes" db:"notes"`
	DocumentKey *string             `json:"document_key" db:"document_key"` // object key of the uploaded scan
	Status      string              `json:"status" db:"status"`
	Items       []*PrescriptionItem `json:"items,omitempty" db:"-"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`
}

type PrescriptionItem struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PrescriptionID uuid.UUID `json:"prescription_id" db:"prescription_id"`
	MedicineID     uuid.UUID `json:"medicine_id" db:"medicine_id"`
	Dosage         string    `json:"dosage" db:"dosage"`
	Quantity       int       `json:"quantity" db:"quantity"`
}
