package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/broadcast"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/caching"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const medicineCacheTTL = 10 * time.Minute

// EventPublisher pushes medicine lifecycle events to live monitor
// subscribers. *broadcast.Broadcaster satisfies it.
type EventPublisher interface {
	Publish(tenantID uuid.UUID, eventType broadcast.EventType, data interface{}) int
}

type MedicineService interface {
	Create(ctx context.Context, req *CreateMedicineRequest) (*models.Medicine, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Medicine, error)
	GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*models.Medicine, error)
	AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) (*models.Medicine, error)
	Update(ctx context.Context, req *UpdateMedicineRequest) (*models.Medicine, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Medicine, error)
	Search(ctx context.Context, tenantID uuid.UUID, filter *models.MedicineSearchFilter) ([]*models.Medicine, error)
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Medicine, error)
	ExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]*models.Medicine, error)
}

type medicineService struct {
	medicineRepo repositories.MedicineRepository
	cacheSvc     caching.CacheService
	publisher    EventPublisher
}

func NewMedicineService(medicineRepo repositories.MedicineRepository, cacheSvc caching.CacheService, publisher EventPublisher) MedicineService {
	return &medicineService{
		medicineRepo: medicineRepo,
		cacheSvc:     cacheSvc,
		publisher:    publisher,
	}
}

type CreateMedicineRequest struct {
	TenantID     uuid.UUID  `json:"-"`
	Name         string     `json:"name" validate:"required"`
	GenericName  *string    `json:"generic_name"`
	Category     *string    `json:"category"`
	BatchNumber  *string    `json:"batch_number"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Stock        int        `json:"stock" validate:"min=0"`
	MinStock     int        `json:"min_stock" validate:"min=0"`
	UnitPrice    float64    `json:"unit_price" validate:"min=0"`
	Barcode      *string    `json:"barcode"`
	Manufacturer *string    `json:"manufacturer"`
}

type UpdateMedicineRequest struct {
	TenantID     uuid.UUID  `json:"-"`
	ID           uuid.UUID  `json:"-"`
	Name         string     `json:"name" validate:"required"`
	GenericName  *string    `json:"generic_name"`
	Category     *string    `json:"category"`
	BatchNumber  *string    `json:"batch_number"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Stock        int        `json:"stock" validate:"min=0"`
	MinStock     int        `json:"min_stock" validate:"min=0"`
	UnitPrice    float64    `json:"unit_price" validate:"min=0"`
	Barcode      *string    `json:"barcode"`
	Manufacturer *string    `json:"manufacturer"`
}

func (s *medicineService) Create(ctx context.Context, req *CreateMedicineRequest) (*models.Medicine, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return nil, errors.New("stock levels cannot be negative")
	}
	if req.UnitPrice < 0 {
		return nil, errors.New("unit price cannot be negative")
	}

	medicine := &models.Medicine{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		Name:         req.Name,
		GenericName:  req.GenericName,
		Category:     req.Category,
		BatchNumber:  req.BatchNumber,
		ExpiryDate:   req.ExpiryDate,
		Stock:        req.Stock,
		MinStock:     req.MinStock,
		UnitPrice:    req.UnitPrice,
		Barcode:      req.Barcode,
		Manufacturer: req.Manufacturer,
		Status:       models.MedicineStatusActive,
	}

	if err := s.medicineRepo.Create(ctx, medicine); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(medicine.TenantID, broadcast.EventMedicineCreated, medicine)
	}
	return medicine, nil
}

func (s *medicineService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Medicine, error) {
	if s.cacheSvc != nil {
		if cached, err := s.cacheSvc.GetMedicine(ctx, tenantID, id); err == nil && cached != nil {
			return cached, nil
		}
	}
	medicine, err := s.medicineRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetMedicine(ctx, tenantID, medicine, medicineCacheTTL); err != nil {
			log.Printf("Failed to cache medicine %s: %v", medicine.ID, err)
		}
	}
	return medicine, nil
}

// GetByBarcode resolves a scanned barcode at the point of sale. Barcodes are
// unique per tenant, not globally.
func (s *medicineService) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*models.Medicine, error) {
	if barcode == "" {
		return nil, errors.New("barcode is required")
	}
	return s.medicineRepo.GetByBarcode(ctx, tenantID, barcode)
}

// AdjustStock applies a manual stock correction (goods received, damaged
// stock written off) and publishes the updated record to live monitors. The
// repository guard refuses adjustments that would drive stock negative.
func (s *medicineService) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, delta int) (*models.Medicine, error) {
	if delta == 0 {
		return nil, errors.New("delta cannot be zero")
	}
	if _, err := s.medicineRepo.AdjustStock(ctx, tenantID, id, delta); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows means either no such medicine or a blocked
			// negative adjustment; a lookup tells them apart.
			if _, getErr := s.medicineRepo.GetByID(ctx, tenantID, id); getErr == nil {
				return nil, repositories.ErrInsufficientStock
			}
		}
		return nil, err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeleteMedicine(ctx, tenantID, id)
	}
	medicine, err := s.medicineRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.Publish(tenantID, broadcast.EventMedicineUpdated, medicine)
	}
	return medicine, nil
}

func (s *medicineService) Update(ctx context.Context, req *UpdateMedicineRequest) (*models.Medicine, error) {
	existing, err := s.medicineRepo.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.GenericName = req.GenericName
	existing.Category = req.Category
	existing.BatchNumber = req.BatchNumber
	existing.ExpiryDate = req.ExpiryDate
	existing.Stock = req.Stock
	existing.MinStock = req.MinStock
	existing.UnitPrice = req.UnitPrice
	existing.Barcode = req.Barcode
	existing.Manufacturer = req.Manufacturer

	if err := s.medicineRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeleteMedicine(ctx, req.TenantID, req.ID)
	}
	if s.publisher != nil {
		s.publisher.Publish(existing.TenantID, broadcast.EventMedicineUpdated, existing)
	}
	return existing, nil
}

func (s *medicineService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.medicineRepo.SoftDelete(ctx, tenantID, id); err != nil {
		return err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeleteMedicine(ctx, tenantID, id)
	}
	if s.publisher != nil {
		s.publisher.Publish(tenantID, broadcast.EventMedicineDeleted, map[string]interface{}{"id": id})
	}
	return nil
}

func (s *medicineService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Medicine, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.medicineRepo.List(ctx, tenantID, limit, offset)
}

func (s *medicineService) Search(ctx context.Context, tenantID uuid.UUID, filter *models.MedicineSearchFilter) ([]*models.Medicine, error) {
	if filter == nil {
		filter = &models.MedicineSearchFilter{}
	}
	return s.medicineRepo.Search(ctx, tenantID, filter)
}

func (s *medicineService) LowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Medicine, error) {
	return s.medicineRepo.LowStock(ctx, tenantID)
}

func (s *medicineService) ExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]*models.Medicine, error) {
	if days <= 0 {
		days = 30
	}
	return s.medicineRepo.ExpiringWithin(ctx, tenantID, days)
}
