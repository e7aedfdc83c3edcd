package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/broadcast"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SaleServiceTestSuite struct {
	suite.Suite
	saleRepo     *MockSaleRepository
	medicineRepo *MockMedicineRepository
	publisher    *MockEventPublisher
	service      SaleService
	tenantID     uuid.UUID
	cashierID    uuid.UUID
	ctx          context.Context
}

func (suite *SaleServiceTestSuite) SetupTest() {
	suite.saleRepo = new(MockSaleRepository)
	suite.medicineRepo = new(MockMedicineRepository)
	suite.publisher = new(MockEventPublisher)
	suite.service = NewSaleService(suite.saleRepo, suite.medicineRepo, suite.publisher)
	suite.tenantID = uuid.New()
	suite.cashierID = uuid.New()
	suite.ctx = context.Background()
}

func TestSaleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SaleServiceTestSuite))
}

func (suite *SaleServiceTestSuite) medicine(name string, stock int, price float64) *models.Medicine {
	return &models.Medicine{
		ID:        uuid.New(),
		TenantID:  suite.tenantID,
		Name:      name,
		Stock:     stock,
		MinStock:  5,
		UnitPrice: price,
		Status:    models.MedicineStatusActive,
	}
}

func (suite *SaleServiceTestSuite) TestCheckout_PricesFromCurrentRecords() {
	aspirin := suite.medicine("Aspirin", 50, 2.5)
	insulin := suite.medicine("Insulin", 10, 40)
	suite.medicineRepo.On("GetByID", suite.ctx, suite.tenantID, aspirin.ID).Return(aspirin, nil).Once()
	suite.medicineRepo.On("GetByID", suite.ctx, suite.tenantID, insulin.ID).Return(insulin, nil).Once()
	suite.saleRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Sale")).Return(nil).Once()
	suite.publisher.On("Publish", suite.tenantID, broadcast.EventMedicineUpdated, mock.Anything).Return(1).Twice()

	sale, err := suite.service.Checkout(suite.ctx, &CheckoutRequest{
		TenantID:      suite.tenantID,
		CashierID:     suite.cashierID,
		PaymentMethod: models.PaymentMethodCash,
		Items: []CheckoutItem{
			{MedicineID: aspirin.ID, Quantity: 4},
			{MedicineID: insulin.ID, Quantity: 1},
		},
	})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), sale.Items, 2)
	assert.InDelta(suite.T(), 50.0, sale.Total, 0.001)
	assert.Equal(suite.T(), 2.5, sale.Items[0].UnitPrice)
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCheckout_InsufficientStock() {
	aspirin := suite.medicine("Aspirin", 2, 2.5)
	suite.medicineRepo.On("GetByID", suite.ctx, suite.tenantID, aspirin.ID).Return(aspirin, nil).Once()

	_, err := suite.service.Checkout(suite.ctx, &CheckoutRequest{
		TenantID:      suite.tenantID,
		CashierID:     suite.cashierID,
		PaymentMethod: models.PaymentMethodCash,
		Items:         []CheckoutItem{{MedicineID: aspirin.ID, Quantity: 3}},
	})

	assert.ErrorIs(suite.T(), err, repositories.ErrInsufficientStock)
	suite.saleRepo.AssertNotCalled(suite.T(), "Create")
	suite.publisher.AssertNotCalled(suite.T(), "Publish")
}

func (suite *SaleServiceTestSuite) TestCheckout_ExpiredMedicineNotSellable() {
	expired := suite.medicine("Old Syrup", 10, 8)
	expired.Status = models.MedicineStatusExpired
	suite.medicineRepo.On("GetByID", suite.ctx, suite.tenantID, expired.ID).Return(expired, nil).Once()

	_, err := suite.service.Checkout(suite.ctx, &CheckoutRequest{
		TenantID:      suite.tenantID,
		CashierID:     suite.cashierID,
		PaymentMethod: models.PaymentMethodCard,
		Items:         []CheckoutItem{{MedicineID: expired.ID, Quantity: 1}},
	})

	assert.Error(suite.T(), err)
	suite.saleRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *SaleServiceTestSuite) TestCheckout_UnknownPaymentMethod() {
	_, err := suite.service.Checkout(suite.ctx, &CheckoutRequest{
		TenantID:      suite.tenantID,
		CashierID:     suite.cashierID,
		PaymentMethod: "barter",
		Items:         []CheckoutItem{{MedicineID: uuid.New(), Quantity: 1}},
	})

	assert.Error(suite.T(), err)
}

func (suite *SaleServiceTestSuite) TestCheckout_EmptyCart() {
	_, err := suite.service.Checkout(suite.ctx, &CheckoutRequest{
		TenantID:      suite.tenantID,
		CashierID:     suite.cashierID,
		PaymentMethod: models.PaymentMethodCash,
	})

	assert.Error(suite.T(), err)
}

func (suite *SaleServiceTestSuite) TestCheckout_RepoErrorDoesNotPublish() {
	aspirin := suite.medicine("Aspirin", 50, 2.5)
	suite.medicineRepo.On("GetByID", suite.ctx, suite.tenantID, aspirin.ID).Return(aspirin, nil).Once()
	suite.saleRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Sale")).Return(errors.New("db down")).Once()

	_, err := suite.service.Checkout(suite.ctx, &CheckoutRequest{
		TenantID:      suite.tenantID,
		CashierID:     suite.cashierID,
		PaymentMethod: models.PaymentMethodCash,
		Items:         []CheckoutItem{{MedicineID: aspirin.ID, Quantity: 1}},
	})

	assert.Error(suite.T(), err)
	suite.publisher.AssertNotCalled(suite.T(), "Publish")
}
