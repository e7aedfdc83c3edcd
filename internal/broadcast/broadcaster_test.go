package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Medicine), args.Error(1)
}

func (m *MockMedicineRepository) ExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]*models.Medicine, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

// captureSink records every payload it receives.
type captureSink struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
}

func (s *captureSink) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("write failed")
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.payloads = append(s.payloads, cp)
	return nil
}

func (s *captureSink) events(t *testing.T) []Event {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, 0, len(s.payloads))
	for _, p := range s.payloads {
		var e Event
		assert.NoError(t, json.Unmarshal(p, &e))
		out = append(out, e)
	}
	return out
}

func (s *captureSink) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

type BroadcasterTestSuite struct {
	suite.Suite
	tenantRepo   *MockTenantRepository
	medicineRepo *MockMedicineRepository
	broadcaster  *Broadcaster
	tenant       *models.Tenant
	ctx          context.Context
}

func (suite *BroadcasterTestSuite) SetupTest() {
	suite.tenantRepo = new(MockTenantRepository)
	suite.medicineRepo = new(MockMedicineRepository)
	// A long scan interval keeps the background loop quiet; scan behavior is
	// tested by calling scanOnce directly.
	suite.broadcaster = NewBroadcaster(suite.tenantRepo, suite.medicineRepo, Config{
		ScanInterval: time.Hour,
	})
	suite.tenant = &models.Tenant{
		ID:        uuid.New(),
		Name:      "City Pharmacy",
		Subdomain: "city",
		Status:    models.TenantStatusActive,
	}
	suite.ctx = context.Background()
}

func TestBroadcasterTestSuite(t *testing.T) {
	suite.Run(t, new(BroadcasterTestSuite))
}

func (suite *BroadcasterTestSuite) subscribe(sink Sink) string {
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, suite.tenant.Subdomain).Return(suite.tenant, nil).Once()
	id, err := suite.broadcaster.Subscribe(suite.ctx, suite.tenant.Subdomain, sink)
	assert.NoError(suite.T(), err)
	return id
}

func (suite *BroadcasterTestSuite) TestSubscribe_EmitsConnectionEstablished() {
	sink := &captureSink{}
	id := suite.subscribe(sink)

	assert.True(suite.T(), strings.HasPrefix(id, suite.tenant.ID.String()+":"))
	assert.Equal(suite.T(), 1, suite.broadcaster.ConnectionCount())

	events := sink.events(suite.T())
	assert.Len(suite.T(), events, 1)
	assert.Equal(suite.T(), EventConnectionEstablished, events[0].Type)
	assert.Equal(suite.T(), suite.tenant.ID, events[0].TenantID)

	payload, _ := json.Marshal(events[0].Data)
	var data ConnectionEstablishedData
	assert.NoError(suite.T(), json.Unmarshal(payload, &data))
	assert.Equal(suite.T(), id, data.ConnectionID)
}

func (suite *BroadcasterTestSuite) TestSubscribe_ConnectionIDsNeverRepeat() {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := suite.subscribe(&captureSink{})
		assert.False(suite.T(), seen[id])
		seen[id] = true
	}
}

func (suite *BroadcasterTestSuite) TestSubscribe_UnknownTenant() {
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, "ghost").Return(nil, pgx.ErrNoRows).Once()

	sink := &captureSink{}
	id, err := suite.broadcaster.Subscribe(suite.ctx, "ghost", sink)

	assert.ErrorIs(suite.T(), err, ErrTenantNotFound)
	assert.Empty(suite.T(), id)
	assert.Equal(suite.T(), 0, suite.broadcaster.ConnectionCount())
	assert.Empty(suite.T(), sink.events(suite.T()))
}

func (suite *BroadcasterTestSuite) TestSubscribe_DeletedTenant() {
	deleted := &models.Tenant{ID: uuid.New(), Subdomain: "gone", Status: models.TenantStatusDeleted}
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, "gone").Return(deleted, nil).Once()

	_, err := suite.broadcaster.Subscribe(suite.ctx, "gone", &captureSink{})

	assert.ErrorIs(suite.T(), err, ErrTenantNotFound)
	assert.Equal(suite.T(), 0, suite.broadcaster.ConnectionCount())
}

func (suite *BroadcasterTestSuite) TestSubscribe_FirstWriteFailureRollsBack() {
	sink := &captureSink{fail: true}
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, suite.tenant.Subdomain).Return(suite.tenant, nil).Once()

	_, err := suite.broadcaster.Subscribe(suite.ctx, suite.tenant.Subdomain, sink)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 0, suite.broadcaster.ConnectionCount())
}

func (suite *BroadcasterTestSuite) TestUnsubscribe_Idempotent() {
	id := suite.subscribe(&captureSink{})

	suite.broadcaster.Unsubscribe(id)
	suite.broadcaster.Unsubscribe(id)

	assert.Equal(suite.T(), 0, suite.broadcaster.ConnectionCount())
}

func (suite *BroadcasterTestSuite) TestPublish_OnlyReachesOwnTenant() {
	sink := &captureSink{}
	suite.subscribe(sink)

	other := &models.Tenant{ID: uuid.New(), Subdomain: "other", Status: models.TenantStatusActive}
	otherSink := &captureSink{}
	suite.tenantRepo.On("GetBySubdomain", suite.ctx, "other").Return(other, nil).Once()
	_, err := suite.broadcaster.Subscribe(suite.ctx, "other", otherSink)
	assert.NoError(suite.T(), err)

	delivered := suite.broadcaster.Publish(suite.tenant.ID, EventMedicineCreated, map[string]string{"name": "Aspirin"})

	assert.Equal(suite.T(), 1, delivered)
	assert.Len(suite.T(), sink.events(suite.T()), 2)      // connection_established + medicine_created
	assert.Len(suite.T(), otherSink.events(suite.T()), 1) // connection_established only
}

func (suite *BroadcasterTestSuite) TestPublish_NoSubscribers() {
	delivered := suite.broadcaster.Publish(uuid.New(), EventMedicineCreated, nil)
	assert.Equal(suite.T(), 0, delivered)
}

func (suite *BroadcasterTestSuite) TestPublish_FailingConnectionIsolated() {
	healthy := &captureSink{}
	broken := &captureSink{}
	suite.subscribe(healthy)
	suite.subscribe(broken)
	broken.setFail(true)

	delivered := suite.broadcaster.Publish(suite.tenant.ID, EventMedicineUpdated, nil)

	assert.Equal(suite.T(), 1, delivered)
	assert.Equal(suite.T(), 1, suite.broadcaster.ConnectionCount())

	// The survivor keeps receiving on the next publish.
	delivered = suite.broadcaster.Publish(suite.tenant.ID, EventMedicineUpdated, nil)
	assert.Equal(suite.T(), 1, delivered)
	assert.Len(suite.T(), healthy.events(suite.T()), 3)
}

func (suite *BroadcasterTestSuite) TestTenantConnectionCount() {
	suite.subscribe(&captureSink{})
	suite.subscribe(&captureSink{})

	assert.Equal(suite.T(), 2, suite.broadcaster.TenantConnectionCount(suite.tenant.ID))
	assert.Equal(suite.T(), 0, suite.broadcaster.TenantConnectionCount(uuid.New()))
}

func (suite *BroadcasterTestSuite) conn(id string) *connection {
	suite.broadcaster.mu.RLock()
	defer suite.broadcaster.mu.RUnlock()
	return suite.broadcaster.conns[id]
}

func (suite *BroadcasterTestSuite) TestScanOnce_QuietTenantHeartbeatOnly() {
	sink := &captureSink{}
	id := suite.subscribe(sink)

	suite.medicineRepo.On("LowStock", mock.Anything, suite.tenant.ID).Return([]*models.Medicine{}, nil).Once()
	suite.medicineRepo.On("ExpiringWithin", mock.Anything, suite.tenant.ID, 30).Return([]*models.Medicine{}, nil).Once()
	suite.medicineRepo.On("CountActive", mock.Anything, suite.tenant.ID).Return(42, nil).Once()

	err := suite.broadcaster.scanOnce(suite.ctx, suite.conn(id))
	assert.NoError(suite.T(), err)

	events := sink.events(suite.T())
	assert.Len(suite.T(), events, 2)
	assert.Equal(suite.T(), EventHeartbeat, events[1].Type)

	payload, _ := json.Marshal(events[1].Data)
	var hb HeartbeatData
	assert.NoError(suite.T(), json.Unmarshal(payload, &hb))
	assert.Equal(suite.T(), 42, hb.MedicineCount)
	assert.Equal(suite.T(), 1, hb.ActiveConnections)
}

func (suite *BroadcasterTestSuite) TestScanOnce_AlertOrdering() {
	sink := &captureSink{}
	id := suite.subscribe(sink)

	expiry := time.Now().Add(48 * time.Hour)
	low := []*models.Medicine{{ID: uuid.New(), Name: "Amoxicillin", Stock: 3, MinStock: 10}}
	expiring := []*models.Medicine{{ID: uuid.New(), Name: "Insulin", Stock: 20, MinStock: 5, ExpiryDate: &expiry}}

	suite.medicineRepo.On("LowStock", mock.Anything, suite.tenant.ID).Return(low, nil).Once()
	suite.medicineRepo.On("ExpiringWithin", mock.Anything, suite.tenant.ID, 30).Return(expiring, nil).Once()
	suite.medicineRepo.On("CountActive", mock.Anything, suite.tenant.ID).Return(2, nil).Once()

	assert.NoError(suite.T(), suite.broadcaster.scanOnce(suite.ctx, suite.conn(id)))

	events := sink.events(suite.T())
	assert.Len(suite.T(), events, 4)
	assert.Equal(suite.T(), EventStockAlert, events[1].Type)
	assert.Equal(suite.T(), EventExpiryAlert, events[2].Type)
	assert.Equal(suite.T(), EventHeartbeat, events[3].Type)

	payload, _ := json.Marshal(events[2].Data)
	var data ExpiryAlertData
	assert.NoError(suite.T(), json.Unmarshal(payload, &data))
	assert.Len(suite.T(), data.Medicines, 1)
	assert.NotNil(suite.T(), data.Medicines[0].DaysUntilExpiry)
	assert.Equal(suite.T(), 2, *data.Medicines[0].DaysUntilExpiry)
}

func (suite *BroadcasterTestSuite) TestScanOnce_StockAlertCarriesFullList() {
	sink := &captureSink{}
	id := suite.subscribe(sink)

	low := []*models.Medicine{
		{ID: uuid.New(), Name: "Amoxicillin", Stock: 3, MinStock: 10},
		{ID: uuid.New(), Name: "Ibuprofen", Stock: 0, MinStock: 20},
	}
	suite.medicineRepo.On("LowStock", mock.Anything, suite.tenant.ID).Return(low, nil).Once()
	suite.medicineRepo.On("ExpiringWithin", mock.Anything, suite.tenant.ID, 30).Return([]*models.Medicine{}, nil).Once()
	suite.medicineRepo.On("CountActive", mock.Anything, suite.tenant.ID).Return(2, nil).Once()

	assert.NoError(suite.T(), suite.broadcaster.scanOnce(suite.ctx, suite.conn(id)))

	events := sink.events(suite.T())
	payload, _ := json.Marshal(events[1].Data)
	var data StockAlertData
	assert.NoError(suite.T(), json.Unmarshal(payload, &data))
	assert.Len(suite.T(), data.Medicines, 2)
	assert.Equal(suite.T(), "Amoxicillin", data.Medicines[0].Name)
	assert.Equal(suite.T(), "Ibuprofen", data.Medicines[1].Name)
}

func (suite *BroadcasterTestSuite) TestScanOnce_RepoError() {
	id := suite.subscribe(&captureSink{})

	suite.medicineRepo.On("LowStock", mock.Anything, suite.tenant.ID).Return(nil, errors.New("db down")).Once()

	err := suite.broadcaster.scanOnce(suite.ctx, suite.conn(id))
	assert.Error(suite.T(), err)
}

func (suite *BroadcasterTestSuite) TestScanLoop_FailureDropsOnlyThatConnection() {
	b := NewBroadcaster(suite.tenantRepo, suite.medicineRepo, Config{ScanInterval: 10 * time.Millisecond})

	suite.tenantRepo.On("GetBySubdomain", suite.ctx, suite.tenant.Subdomain).Return(suite.tenant, nil).Twice()
	_, err := b.Subscribe(suite.ctx, suite.tenant.Subdomain, &captureSink{})
	assert.NoError(suite.T(), err)
	_, err = b.Subscribe(suite.ctx, suite.tenant.Subdomain, &captureSink{})
	assert.NoError(suite.T(), err)

	// The repo fails only for the scan that runs first; the connection whose
	// loop hit the failure is dropped and the other keeps scanning.
	suite.medicineRepo.On("LowStock", mock.Anything, suite.tenant.ID).Return(nil, errors.New("db down")).Once()
	suite.medicineRepo.On("LowStock", mock.Anything, suite.tenant.ID).Return([]*models.Medicine{}, nil)
	suite.medicineRepo.On("ExpiringWithin", mock.Anything, suite.tenant.ID, 30).Return([]*models.Medicine{}, nil)
	suite.medicineRepo.On("CountActive", mock.Anything, suite.tenant.ID).Return(1, nil)

	assert.Eventually(suite.T(), func() bool {
		return b.ConnectionCount() == 1
	}, time.Second, 5*time.Millisecond)

	// Give the survivor a few more ticks and confirm it stays registered.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(suite.T(), 1, b.ConnectionCount())
}

func TestDaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"expiring this instant", now, 0},
		{"later today", now.Add(6 * time.Hour), 1},
		{"exactly one day", now.Add(24 * time.Hour), 1},
		{"just past one day", now.Add(25 * time.Hour), 2},
		{"thirty days", now.Add(30 * 24 * time.Hour), 30},
		{"already expired", now.Add(-36 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilExpiry(now, tt.expiry))
		})
	}
}
