package services

import (
	"context"
	"log"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/caching"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
)

const reportCacheTTL = 5 * time.Minute

// InventoryReport is the stock-health snapshot shown on the dashboard.
type InventoryReport struct {
	TenantID      uuid.UUID          `json:"tenant_id"`
	GeneratedAt   time.Time          `json:"generated_at"`
	MedicineCount int                `json:"medicine_count"`
	LowStock      []*models.Medicine `json:"low_stock"`
	Expiring      []*models.Medicine `json:"expiring"`
}

type ReportService interface {
	DailySales(ctx context.Context, tenantID uuid.UUID, day time.Time) (*models.SalesSummary, error)
	SalesBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error)
	InventoryHealth(ctx context.Context, tenantID uuid.UUID, expiryWindowDays int) (*InventoryReport, error)
}

type reportService struct {
	saleRepo     repositories.SaleRepository
	medicineRepo repositories.MedicineRepository
	cacheSvc     caching.CacheService
}

func NewReportService(saleRepo repositories.SaleRepository, medicineRepo repositories.MedicineRepository, cacheSvc caching.CacheService) ReportService {
	return &reportService{
		saleRepo:     saleRepo,
		medicineRepo: medicineRepo,
		cacheSvc:     cacheSvc,
	}
}

func (s *reportService) DailySales(ctx context.Context, tenantID uuid.UUID, day time.Time) (*models.SalesSummary, error) {
	dayKey := day.Format("2006-01-02")
	if s.cacheSvc != nil {
		if cached, err := s.cacheSvc.GetSalesSummary(ctx, tenantID, dayKey); err == nil && cached != nil {
			return cached, nil
		}
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	summary, err := s.saleRepo.Summary(ctx, tenantID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetSalesSummary(ctx, tenantID, dayKey, summary, reportCacheTTL); err != nil {
			log.Printf("Failed to cache sales summary for tenant %s: %v", tenantID, err)
		}
	}
	return summary, nil
}

func (s *reportService) SalesBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	return s.saleRepo.Summary(ctx, tenantID, from, to)
}

func (s *reportService) InventoryHealth(ctx context.Context, tenantID uuid.UUID, expiryWindowDays int) (*InventoryReport, error) {
	if expiryWindowDays <= 0 {
		expiryWindowDays = 30
	}

	low, err := s.medicineRepo.LowStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	expiring, err := s.medicineRepo.ExpiringWithin(ctx, tenantID, expiryWindowDays)
	if err != nil {
		return nil, err
	}
	count, err := s.medicineRepo.CountActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return &InventoryReport{
		TenantID:      tenantID,
		GeneratedAt:   time.Now().UTC(),
		MedicineCount: count,
		LowStock:      low,
		Expiring:      expiring,
	}, nil
}
