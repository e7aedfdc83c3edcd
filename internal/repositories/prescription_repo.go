package repositories

import (
	"context"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *models.Prescription) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error)
	Update(ctx context.Context, prescription *models.Prescription) error
	SetDocumentKey(ctx context.Context, tenantID, id uuid.UUID, key string) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Prescription, error)
}

const prescriptionColumns = `id, tenant_id, customer_id, doctor_name, notes, document_key, status, created_at, updated_at`

type prescriptionRepo struct {
	db DB
}

func NewPrescriptionRepo(db DB) PrescriptionRepository {
	return &prescriptionRepo{db: db}
}

func scanPrescription(row interface{ Scan(dest ...interface{}) error }) (*models.Prescription, error) {
	p := &models.Prescription{}
	err := row.Scan(&p.ID, &p.TenantID, &p.CustomerID, &p.DoctorName, &p.Notes, &p.DocumentKey, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts the prescription and its items in one transaction.
func (r *prescriptionRepo) Create(ctx context.Context, prescription *models.Prescription) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO prescriptions (id, tenant_id, customer_id, doctor_name, notes, document_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, query, prescription.ID, prescription.TenantID, prescription.CustomerID, prescription.DoctorName, prescription.Notes, prescription.DocumentKey, prescription.Status); err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO prescription_items (id, prescription_id, medicine_id, dosage, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range prescription.Items {
		if _, err := tx.Exec(ctx, itemQuery, item.ID, item.PrescriptionID, item.MedicineID, item.Dosage, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *prescriptionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error) {
	query := `
		SELECT ` + prescriptionColumns + `
		FROM prescriptions
		WHERE tenant_id = $1 AND id = $2
	`
	prescription, err := scanPrescription(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT id, prescription_id, medicine_id, dosage, quantity
		FROM prescription_items
		WHERE prescription_id = $1
	`
	rows, err := r.db.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.PrescriptionItem{}
		if err := rows.Scan(&item.ID, &item.PrescriptionID, &item.MedicineID, &item.Dosage, &item.Quantity); err != nil {
			return nil, err
		}
		prescription.Items = append(prescription.Items, item)
	}
	return prescription, rows.Err()
}

func (r *prescriptionRepo) Update(ctx context.Context, prescription *models.Prescription) error {
	query := `
		UPDATE prescriptions
		SET doctor_name = $1, notes = $2, status = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, prescription.DoctorName, prescription.Notes, prescription.Status, prescription.TenantID, prescription.ID)
	return err
}

func (r *prescriptionRepo) SetDocumentKey(ctx context.Context, tenantID, id uuid.UUID, key string) error {
	query := `UPDATE prescriptions SET document_key = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, key, tenantID, id)
	return err
}

func (r *prescriptionRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE prescriptions SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, models.PrescriptionStatusDeleted, tenantID, id)
	return err
}

func (r *prescriptionRepo) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `UPDATE prescriptions SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND status != $1`
	tag, err := r.db.Exec(ctx, query, models.PrescriptionStatusDeleted, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *prescriptionRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error) {
	query := `
		SELECT ` + prescriptionColumns + `
		FROM prescriptions
		WHERE tenant_id = $1 AND status != $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.PrescriptionStatusDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prescriptions []*models.Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, rows.Err()
}

func (r *prescriptionRepo) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Prescription, error) {
	query := `
		SELECT ` + prescriptionColumns + `
		FROM prescriptions
		WHERE tenant_id = $1 AND customer_id = $2 AND status != $3
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, tenantID, customerID, models.PrescriptionStatusDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prescriptions []*models.Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, rows.Err()
}
