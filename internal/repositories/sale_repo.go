package repositories

import (
	"context"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Sale, error)
	ListByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Sale, error)
	Summary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error)
}

type saleRepo struct {
	db DB
}

func NewSaleRepo(db DB) SaleRepository {
	return &saleRepo{db: db}
}

// Create inserts the sale header, its line items, and decrements medicine
// stock, all in one transaction so a failed line leaves stock untouched.
func (r *saleRepo) Create(ctx context.Context, sale *models.Sale) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sales (id, tenant_id, customer_id, cashier_id, total, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	if _, err := tx.Exec(ctx, query, sale.ID, sale.TenantID, sale.CustomerID, sale.CashierID, sale.Total, sale.PaymentMethod); err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO sale_items (id, sale_id, medicine_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`
	stockQuery := `
		UPDATE medicines
		SET stock = stock - $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND stock >= $1
	`
	for _, item := range sale.Items {
		if _, err := tx.Exec(ctx, itemQuery, item.ID, item.SaleID, item.MedicineID, item.Quantity, item.UnitPrice); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, stockQuery, item.Quantity, sale.TenantID, item.MedicineID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInsufficientStock
		}
	}

	return tx.Commit(ctx)
}

func (r *saleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error) {
	sale := &models.Sale{}
	query := `
		SELECT id, tenant_id, customer_id, cashier_id, total, payment_method, created_at
		FROM sales
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&sale.ID, &sale.TenantID, &sale.CustomerID, &sale.CashierID, &sale.Total, &sale.PaymentMethod, &sale.CreatedAt)
	if err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT id, sale_id, medicine_id, quantity, unit_price
		FROM sale_items
		WHERE sale_id = $1
	`
	rows, err := r.db.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.SaleItem{}
		if err := rows.Scan(&item.ID, &item.SaleID, &item.MedicineID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, rows.Err()
}

func (r *saleRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	query := `
		SELECT id, tenant_id, customer_id, cashier_id, total, payment_method, created_at
		FROM sales
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSales(rows)
}

func (r *saleRepo) ListByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Sale, error) {
	query := `
		SELECT id, tenant_id, customer_id, cashier_id, total, payment_method, created_at
		FROM sales
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSales(rows)
}

func (r *saleRepo) Summary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	summary := &models.SalesSummary{TenantID: tenantID, From: from, To: to}
	query := `
		SELECT COUNT(DISTINCT s.id), COALESCE(SUM(s.total), 0), COALESCE(SUM(i.quantity), 0)
		FROM sales s
		LEFT JOIN sale_items i ON i.sale_id = s.id
		WHERE s.tenant_id = $1 AND s.created_at >= $2 AND s.created_at < $3
	`
	err := r.db.QueryRow(ctx, query, tenantID, from, to).Scan(&summary.SaleCount, &summary.TotalValue, &summary.ItemsSold)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func collectSales(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]*models.Sale, error) {
	var sales []*models.Sale
	for rows.Next() {
		sale := &models.Sale{}
		if err := rows.Scan(&sale.ID, &sale.TenantID, &sale.CustomerID, &sale.CashierID, &sale.Total, &sale.PaymentMethod, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}
