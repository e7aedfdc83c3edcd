package repositories

import (
	"context"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error)
	Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error)
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, tenant_id, name, phone, email, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.TenantID, customer.Name, customer.Phone, customer.Email, customer.Address, customer.Status)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT id, tenant_id, name, phone, email, address, status, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&customer.ID, &customer.TenantID, &customer.Name, &customer.Phone, &customer.Email, &customer.Address, &customer.Status, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, phone = $2, email = $3, address = $4, status = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, customer.Name, customer.Phone, customer.Email, customer.Address, customer.Status, customer.TenantID, customer.ID)
	return err
}

func (r *customerRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE customers SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, models.CustomerStatusDeleted, tenantID, id)
	return err
}

func (r *customerRepo) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `UPDATE customers SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND status != $1`
	tag, err := r.db.Exec(ctx, query, models.CustomerStatusDeleted, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT id, tenant_id, name, phone, email, address, status, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND status != $2
		ORDER BY name ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.CustomerStatusDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.TenantID, &customer.Name, &customer.Phone, &customer.Email, &customer.Address, &customer.Status, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func (r *customerRepo) Search(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error) {
	sql := `
		SELECT id, tenant_id, name, phone, email, address, status, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND status != $2 AND (name ILIKE $3 OR phone LIKE $3 OR email ILIKE $3)
		ORDER BY name ASC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, sql, tenantID, models.CustomerStatusDeleted, "%"+query+"%", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.TenantID, &customer.Name, &customer.Phone, &customer.Email, &customer.Address, &customer.Status, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
