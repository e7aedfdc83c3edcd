package repositories

import (
	"context"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, tenantID, id uuid.UUID, passwordHash string) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error)
	ListOrphaned(ctx context.Context) ([]*models.User, error)
}

const userColumns = `id, tenant_id, name, email, password_hash, role, status, created_at, updated_at`

type userRepo struct {
	db DB
}

func NewUserRepo(db DB) UserRepository {
	return &userRepo{db: db}
}

func scanUser(row interface{ Scan(dest ...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.TenantID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, name, email, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.TenantID, user.Name, user.Email, user.PasswordHash, user.Role, user.Status)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE tenant_id = $1 AND id = $2
	`
	return scanUser(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE tenant_id = $1 AND email = $2
	`
	return scanUser(r.db.QueryRow(ctx, query, tenantID, email))
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, role = $3, status = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, user.Name, user.Email, user.Role, user.Status, user.TenantID, user.ID)
	return err
}

func (r *userRepo) UpdatePassword(ctx context.Context, tenantID, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, passwordHash, tenantID, id)
	return err
}

func (r *userRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, models.UserStatusDeleted, tenantID, id)
	return err
}

func (r *userRepo) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND status != $1`
	tag, err := r.db.Exec(ctx, query, models.UserStatusDeleted, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *userRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE tenant_id = $1 AND status != $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, models.UserStatusDeleted, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListOrphaned returns active users whose tenant is missing or soft-deleted.
// Used by the consistency check.
func (r *userRepo) ListOrphaned(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT u.id, u.tenant_id, u.name, u.email, u.password_hash, u.role, u.status, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN tenants t ON t.id = u.tenant_id
		WHERE u.status = $1 AND (t.id IS NULL OR t.status != $2)
		ORDER BY u.tenant_id
	`
	rows, err := r.db.Query(ctx, query, models.UserStatusActive, models.TenantStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
