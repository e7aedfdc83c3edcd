package services

import (
	"context"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/broadcast"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMedicineRepository mocks the MedicineRepository interface for testing
type MockMedicineRepository struct {
	mock.Mock
}

func (m *MockMedicineRepository) Create(ctx context.Context, medicine *models.Medicine) error {
	args := m.Called(ctx, medicine)
	return args.Error(0)
}

func (m *MockMedicineRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Medicine, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*models.Medicine, error) {
	args := m.Called(ctx, tenantID, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Update(ctx context.Context, medicine *models.Medicine) error {
	args := m.Called(ctx, medicine)
	return args.Error(0)
}

func (m *MockMedicineRepository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockMedicineRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Medicine, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) Search(ctx context.Context, tenantID uuid.UUID, filter *models.MedicineSearchFilter) ([]*models.Medicine, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) LowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Medicine, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) ExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]*models.Medicine, error) {
	args := m.Called(ctx, tenantID, days)
	return args.Get(0).([]*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) CountActive(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *MockMedicineRepository) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, tenantID, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockMedicineRepository) MarkExpired(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMedicineRepository) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTenantRepository mocks the TenantRepository interface for testing
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

// MockSaleRepository mocks the SaleRepository interface for testing
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sale), args.Error(1)
}

func (m *MockSaleRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Sale), args.Error(1)
}

func (m *MockSaleRepository) ListByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Sale, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]*models.Sale), args.Error(1)
}

func (m *MockSaleRepository) Summary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SalesSummary), args.Error(1)
}

// MockEventPublisher records published events instead of pushing them
// anywhere.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(tenantID uuid.UUID, eventType broadcast.EventType, data interface{}) int {
	args := m.Called(tenantID, eventType, data)
	return args.Int(0)
}

// MockCacheService mocks the CacheService interface for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetMedicine(ctx context.Context, tenantID, medicineID uuid.UUID) (*models.Medicine, error) {
	args := m.Called(ctx, tenantID, medicineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Medicine), args.Error(1)
}

func (m *MockCacheService) SetMedicine(ctx context.Context, tenantID uuid.UUID, medicine *models.Medicine, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, medicine, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteMedicine(ctx context.Context, tenantID, medicineID uuid.UUID) error {
	args := m.Called(ctx, tenantID, medicineID)
	return args.Error(0)
}

func (m *MockCacheService) GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockCacheService) SetTenantBySubdomain(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	args := m.Called(ctx, tenant, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteTenantBySubdomain(ctx context.Context, subdomain string) error {
	args := m.Called(ctx, subdomain)
	return args.Error(0)
}

func (m *MockCacheService) GetSalesSummary(ctx context.Context, tenantID uuid.UUID, day string) (*models.SalesSummary, error) {
	args := m.Called(ctx, tenantID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SalesSummary), args.Error(1)
}

func (m *MockCacheService) SetSalesSummary(ctx context.Context, tenantID uuid.UUID, day string, summary *models.SalesSummary, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, day, summary, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
