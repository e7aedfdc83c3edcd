package ops

import (
	"context"
	"testing"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

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

// MockUserRepository mocks the UserRepository interface for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, tenantID, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tenantID, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) ListOrphaned(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockCascadeRepo mocks the CascadeRepo interface for testing
type MockCascadeRepo struct {
	mock.Mock
}

func (m *MockCascadeRepo) SoftDeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type PasswordResetTestSuite struct {
	suite.Suite
	tenantRepo *MockTenantRepository
	userRepo   *MockUserRepository
	resetter   *PasswordResetter
	tenant     *models.Tenant
	ctx        context.Context
}

func (suite *PasswordResetTestSuite) SetupTest() {
	suite.tenantRepo = new(MockTenantRepository)
	suite.userRepo = new(MockUserRepository)
	suite.resetter = NewPasswordResetter(suite.tenantRepo, suite.userRepo)
	suite.tenant = &models.Tenant{ID: uuid.New(), Subdomain: "city", Status: models.TenantStatusActive}
	suite.ctx = context.Background()
}

func TestPasswordResetTestSuite(t *testing.T) {
	suite.Run(t, new(PasswordResetTestSuite))
}

func (suite *PasswordResetTestSuite) TestReset_Success() {
	user := &models.User{
		ID:       uuid.New(),
		TenantID: suite.tenant.ID,
		Email:    "admin@city.test",
		Status:   models.UserStatusActive,
	}
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, "city").Return(suite.tenant, nil).Once()
	suite.userRepo.On("GetByEmail", suite.ctx, suite.tenant.ID, "admin@city.test").Return(user, nil).Once()
	suite.userRepo.On("UpdatePassword", suite.ctx, suite.tenant.ID, user.ID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			hash := args.String(3)
			assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2hunter2")))
		}).
		Return(nil).Once()

	err := suite.resetter.Reset(suite.ctx, "city", " Admin@City.test ", "hunter2hunter2")
	assert.NoError(suite.T(), err)
	suite.userRepo.AssertExpectations(suite.T())
}

func (suite *PasswordResetTestSuite) TestReset_ShortPassword() {
	err := suite.resetter.Reset(suite.ctx, "city", "admin@city.test", "short")
	assert.Error(suite.T(), err)
	suite.tenantRepo.AssertNotCalled(suite.T(), "GetBySubdomain")
}

func (suite *PasswordResetTestSuite) TestReset_UnknownTenant() {
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, "ghost").Return(nil, pgx.ErrNoRows).Once()

	err := suite.resetter.Reset(suite.ctx, "ghost", "admin@city.test", "hunter2hunter2")
	assert.ErrorIs(suite.T(), err, ErrTenantNotFound)
}

func (suite *PasswordResetTestSuite) TestReset_DeletedUser() {
	user := &models.User{ID: uuid.New(), TenantID: suite.tenant.ID, Status: models.UserStatusDeleted}
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, "city").Return(suite.tenant, nil).Once()
	suite.userRepo.On("GetByEmail", suite.ctx, suite.tenant.ID, "gone@city.test").Return(user, nil).Once()

	err := suite.resetter.Reset(suite.ctx, "city", "gone@city.test", "hunter2hunter2")
	assert.ErrorIs(suite.T(), err, ErrUserNotFound)
	suite.userRepo.AssertNotCalled(suite.T(), "UpdatePassword")
}

func TestConsistencyChecker_Run(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	userRepo := new(MockUserRepository)
	checker := NewConsistencyChecker(tenantRepo, userRepo)
	ctx := context.Background()

	healthy := &models.Tenant{ID: uuid.New(), Subdomain: "ok", Status: models.TenantStatusActive}
	headless := &models.Tenant{ID: uuid.New(), Subdomain: "headless", Status: models.TenantStatusActive}
	deleted := &models.Tenant{ID: uuid.New(), Subdomain: "gone", Status: models.TenantStatusDeleted}
	orphan := &models.User{ID: uuid.New(), TenantID: uuid.New(), Email: "orphan@x.test"}

	userRepo.On("ListOrphaned", ctx).Return([]*models.User{orphan}, nil).Once()
	tenantRepo.On("List", ctx, 1000, 0).Return([]*models.Tenant{healthy, headless, deleted}, nil).Once()
	userRepo.On("List", ctx, healthy.ID, 1000, 0).Return([]*models.User{
		{ID: uuid.New(), Role: models.UserRoleAdmin},
	}, nil).Once()
	userRepo.On("List", ctx, headless.ID, 1000, 0).Return([]*models.User{
		{ID: uuid.New(), Role: models.UserRoleCashier},
	}, nil).Once()

	report, err := checker.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, report.TenantsChecked)
	assert.Equal(t, 2, report.ActiveTenants)
	assert.Len(t, report.OrphanedUsers, 1)
	assert.Equal(t, []uuid.UUID{headless.ID}, report.TenantsNoAdmin)
	// Deleted tenants are skipped entirely.
	userRepo.AssertNotCalled(t, "List", ctx, deleted.ID, 1000, 0)
}

func TestTenantDeleter_CascadeCountsEveryScope(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	users := new(MockCascadeRepo)
	medicines := new(MockCascadeRepo)
	customers := new(MockCascadeRepo)
	prescriptions := new(MockCascadeRepo)
	deleter := NewTenantDeleter(tenantRepo, users, medicines, customers, prescriptions)
	ctx := context.Background()

	tenant := &models.Tenant{ID: uuid.New(), Subdomain: "city", Status: models.TenantStatusActive}
	tenantRepo.On("GetByID", ctx, tenant.ID).Return(tenant, nil).Once()
	tenantRepo.On("SoftDelete", ctx, tenant.ID).Return(nil).Once()
	users.On("SoftDeleteByTenant", ctx, tenant.ID).Return(int64(3), nil).Once()
	medicines.On("SoftDeleteByTenant", ctx, tenant.ID).Return(int64(120), nil).Once()
	customers.On("SoftDeleteByTenant", ctx, tenant.ID).Return(int64(45), nil).Once()
	prescriptions.On("SoftDeleteByTenant", ctx, tenant.ID).Return(int64(12), nil).Once()

	result, err := deleter.SoftDelete(ctx, tenant.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), result.Users)
	assert.Equal(t, int64(120), result.Medicines)
	assert.Equal(t, int64(45), result.Customers)
	assert.Equal(t, int64(12), result.Prescriptions)
	tenantRepo.AssertExpectations(t)
}

func TestTenantDeleter_AlreadyDeleted(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	deleter := NewTenantDeleter(tenantRepo, new(MockCascadeRepo), new(MockCascadeRepo), new(MockCascadeRepo), new(MockCascadeRepo))
	ctx := context.Background()

	tenant := &models.Tenant{ID: uuid.New(), Status: models.TenantStatusDeleted}
	tenantRepo.On("GetByID", ctx, tenant.ID).Return(tenant, nil).Once()

	_, err := deleter.SoftDelete(ctx, tenant.ID)
	assert.Error(t, err)
	tenantRepo.AssertNotCalled(t, "SoftDelete")
}

func TestTenantDeleter_UnknownTenant(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	deleter := NewTenantDeleter(tenantRepo, new(MockCascadeRepo), new(MockCascadeRepo), new(MockCascadeRepo), new(MockCascadeRepo))
	ctx := context.Background()

	id := uuid.New()
	tenantRepo.On("GetByID", ctx, id).Return(nil, pgx.ErrNoRows).Once()

	_, err := deleter.SoftDelete(ctx, id)
	assert.ErrorIs(t, err, ErrTenantNotFound)
}
