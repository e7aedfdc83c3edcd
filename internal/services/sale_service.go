package services

import (
	"context"
	"errors"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/broadcast"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
)

type SaleService interface {
	Checkout(ctx context.Context, req *CheckoutRequest) (*models.Sale, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Sale, error)
	ListByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Sale, error)
}

type saleService struct {
	saleRepo     repositories.SaleRepository
	medicineRepo repositories.MedicineRepository
	publisher    EventPublisher
}

func NewSaleService(saleRepo repositories.SaleRepository, medicineRepo repositories.MedicineRepository, publisher EventPublisher) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		medicineRepo: medicineRepo,
		publisher:    publisher,
	}
}

type CheckoutItem struct {
	MedicineID uuid.UUID `json:"medicine_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,min=1"`
}

type CheckoutRequest struct {
	TenantID      uuid.UUID      `json:"-"`
	CashierID     uuid.UUID      `json:"-"`
	CustomerID    *uuid.UUID     `json:"customer_id"`
	PaymentMethod string         `json:"payment_method" validate:"required"`
	Items         []CheckoutItem `json:"items" validate:"required,min=1"`
}

// Checkout prices each line from the current medicine record, records the
// sale (stock decrement happens in the same transaction), and announces the
// stock movement to live subscribers.
func (s *saleService) Checkout(ctx context.Context, req *CheckoutRequest) (*models.Sale, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("a sale needs at least one item")
	}
	switch req.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodMobile:
	default:
		return nil, errors.New("unknown payment method")
	}

	sale := &models.Sale{
		ID:            uuid.New(),
		TenantID:      req.TenantID,
		CustomerID:    req.CustomerID,
		CashierID:     req.CashierID,
		PaymentMethod: req.PaymentMethod,
	}

	sold := make([]*models.Medicine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, errors.New("item quantity must be positive")
		}
		medicine, err := s.medicineRepo.GetByID(ctx, req.TenantID, item.MedicineID)
		if err != nil {
			return nil, err
		}
		if medicine.Status != models.MedicineStatusActive {
			return nil, errors.New("medicine is not sellable: " + medicine.Name)
		}
		if medicine.Stock < item.Quantity {
			return nil, repositories.ErrInsufficientStock
		}
		sale.Items = append(sale.Items, &models.SaleItem{
			ID:         uuid.New(),
			SaleID:     sale.ID,
			MedicineID: medicine.ID,
			Quantity:   item.Quantity,
			UnitPrice:  medicine.UnitPrice,
		})
		sale.Total += medicine.UnitPrice * float64(item.Quantity)
		sold = append(sold, medicine)
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		for i, medicine := range sold {
			medicine.Stock -= sale.Items[i].Quantity
			s.publisher.Publish(req.TenantID, broadcast.EventMedicineUpdated, medicine)
		}
	}
	return sale, nil
}

func (s *saleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error) {
	return s.saleRepo.GetByID(ctx, tenantID, id)
}

func (s *saleService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.saleRepo.List(ctx, tenantID, limit, offset)
}

func (s *saleService) ListByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Sale, error) {
	if !to.After(from) {
		return nil, errors.New("invalid date range")
	}
	return s.saleRepo.ListByDateRange(ctx, tenantID, from, to)
}
