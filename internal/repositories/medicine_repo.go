package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
)

type MedicineRepository interface {
	Create(ctx context.Context, medicine *models.Medicine) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Medicine, error)
	GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*models.Medicine, error)
	Update(ctx context.Context, medicine *models.Medicine) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Medicine, error)
	Search(ctx context.Context, tenantID uuid.UUID, filter *models.MedicineSearchFilter) ([]*models.Medicine, error)
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Medicine, error)
	ExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]*models.Medicine, error)
	CountActive(ctx context.Context, tenantID uuid.UUID) (int, error)
	AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) (int, error)
	MarkExpired(ctx context.Context, asOf time.Time) (int64, error)
	SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

const medicineColumns = `id, tenant_id, name, generic_name, category, batch_number, expiry_date, stock, min_stock, unit_price, barcode, manufacturer, status, created_at, updated_at`

type medicineRepo struct {
	db DB
}

func NewMedicineRepo(db DB) MedicineRepository {
	return &medicineRepo{db: db}
}

func scanMedicine(row interface{ Scan(dest ...interface{}) error }) (*models.Medicine, error) {
	m := &models.Medicine{}
	err := row.Scan(&m.ID, &m.TenantID, &m.Name, &m.GenericName, &m.Category, &m.BatchNumber, &m.ExpiryDate, &m.Stock, &m.MinStock, &m.UnitPrice, &m.Barcode, &m.Manufacturer, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *medicineRepo) Create(ctx context.Context, medicine *models.Medicine) error {
	query := `
		INSERT INTO medicines (id, tenant_id, name, generic_name, category, batch_number, expiry_date, stock, min_stock, unit_price, barcode, manufacturer, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, medicine.ID, medicine.TenantID, medicine.Name, medicine.GenericName, medicine.Category, medicine.BatchNumber, medicine.ExpiryDate, medicine.Stock, medicine.MinStock, medicine.UnitPrice, medicine.Barcode, medicine.Manufacturer, medicine.Status)
	return err
}

func (r *medicineRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE tenant_id = $1 AND id = $2
	`
	return scanMedicine(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *medicineRepo) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*models.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE tenant_id = $1 AND barcode = $2 AND status != $3
	`
	return scanMedicine(r.db.QueryRow(ctx, query, tenantID, barcode, models.MedicineStatusDeleted))
}

func (r *medicineRepo) Update(ctx context.Context, medicine *models.Medicine) error {
	query := `
		UPDATE medicines
		SET name = $1, generic_name = $2, category = $3, batch_number = $4, expiry_date = $5, stock = $6, min_stock = $7, unit_price = $8, barcode = $9, manufacturer = $10, status = $11, updated_at = NOW()
		WHERE tenant_id = $12 AND id = $13
	`
	_, err := r.db.Exec(ctx, query, medicine.Name, medicine.GenericName, medicine.Category, medicine.BatchNumber, medicine.ExpiryDate, medicine.Stock, medicine.MinStock, medicine.UnitPrice, medicine.Barcode, medicine.Manufacturer, medicine.Status, medicine.TenantID, medicine.ID)
	return err
}

func (r *medicineRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE medicines SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, models.MedicineStatusDeleted, tenantID, id)
	return err
}

func (r *medicineRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE tenant_id = $1 AND status != $2
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.MedicineStatusDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func (r *medicineRepo) Search(ctx context.Context, tenantID uuid.UUID, filter *models.MedicineSearchFilter) ([]*models.Medicine, error) {
	conditions := []string{"tenant_id = $1", "status != $2"}
	args := []interface{}{tenantID, models.MedicineStatusDeleted}
	argIdx := 3

	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR generic_name ILIKE $%d OR barcode = $%d)", argIdx, argIdx, argIdx+1))
		args = append(args, "%"+filter.Query+"%", filter.Query)
		argIdx += 2
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *filter.Category)
		argIdx++
	}
	if filter.LowStockOnly {
		conditions = append(conditions, "stock <= min_stock")
	}
	if filter.ExpiryBefore != nil {
		conditions = append(conditions, fmt.Sprintf("expiry_date <= $%d", argIdx))
		args = append(args, *filter.ExpiryBefore)
		argIdx++
	}
	if filter.ExpiryAfter != nil {
		conditions = append(conditions, fmt.Sprintf("expiry_date >= $%d", argIdx))
		args = append(args, *filter.ExpiryAfter)
		argIdx++
	}

	sortBy := "name"
	switch filter.SortBy {
	case "expiry_date", "stock", "unit_price", "created_at":
		sortBy = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT `+medicineColumns+`
		FROM medicines
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), sortBy, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func (r *medicineRepo) LowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE tenant_id = $1 AND status = $2 AND stock <= min_stock
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.MedicineStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func (r *medicineRepo) ExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]*models.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE tenant_id = $1 AND status = $2
		  AND expiry_date IS NOT NULL
		  AND expiry_date >= NOW()
		  AND expiry_date <= NOW() + make_interval(days => $3)
		ORDER BY expiry_date ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.MedicineStatusActive, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func (r *medicineRepo) CountActive(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM medicines WHERE tenant_id = $1 AND status = $2`
	err := r.db.QueryRow(ctx, query, tenantID, models.MedicineStatusActive).Scan(&count)
	return count, err
}

// AdjustStock applies a delta atomically and returns the resulting stock.
// The stock >= -delta guard keeps concurrent sales from driving stock negative.
func (r *medicineRepo) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) (int, error) {
	var stock int
	query := `
		UPDATE medicines
		SET stock = stock + $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND stock + $1 >= 0
		RETURNING stock
	`
	err := r.db.QueryRow(ctx, query, delta, tenantID, id).Scan(&stock)
	return stock, err
}

func (r *medicineRepo) MarkExpired(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE medicines
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expiry_date IS NOT NULL AND expiry_date < $3
	`
	tag, err := r.db.Exec(ctx, query, models.MedicineStatusExpired, models.MedicineStatusActive, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *medicineRepo) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `UPDATE medicines SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND status != $1`
	tag, err := r.db.Exec(ctx, query, models.MedicineStatusDeleted, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectMedicines(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]*models.Medicine, error) {
	var medicines []*models.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}
