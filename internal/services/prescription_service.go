package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"

	"github.com/google/uuid"
)

const prescriptionBucket = "prescriptions"

type PrescriptionService interface {
	Create(ctx context.Context, req *CreatePrescriptionRequest) (*models.Prescription, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error)
	Dispense(ctx context.Context, tenantID, id uuid.UUID) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Prescription, error)
	AttachDocument(ctx context.Context, tenantID, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	DocumentURL(ctx context.Context, tenantID, id uuid.UUID) (string, error)
}

type prescriptionService struct {
	prescriptionRepo repositories.PrescriptionRepository
	medicineRepo     repositories.MedicineRepository
	storageSvc       StorageService
}

func NewPrescriptionService(prescriptionRepo repositories.PrescriptionRepository, medicineRepo repositories.MedicineRepository, storageSvc StorageService) PrescriptionService {
	return &prescriptionService{
		prescriptionRepo: prescriptionRepo,
		medicineRepo:     medicineRepo,
		storageSvc:       storageSvc,
	}
}

type PrescriptionItemRequest struct {
	MedicineID uuid.UUID `json:"medicine_id" validate:"required"`
	Dosage     string    `json:"dosage" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,min=1"`
}

type CreatePrescriptionRequest struct {
	TenantID   uuid.UUID                 `json:"-"`
	CustomerID uuid.UUID                 `json:"customer_id" validate:"required"`
	DoctorName string                    `json:"doctor_name" validate:"required"`
	Notes      *string                   `json:"notes"`
	Items      []PrescriptionItemRequest `json:"items" validate:"required,min=1"`
}

func (s *prescriptionService) Create(ctx context.Context, req *CreatePrescriptionRequest) (*models.Prescription, error) {
	if req.DoctorName == "" {
		return nil, errors.New("doctor name is required")
	}
	if len(req.Items) == 0 {
		return nil, errors.New("a prescription needs at least one item")
	}

	prescription := &models.Prescription{
		ID:         uuid.New(),
		TenantID:   req.TenantID,
		CustomerID: req.CustomerID,
		DoctorName: req.DoctorName,
		Notes:      req.Notes,
		Status:     models.PrescriptionStatusPending,
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, errors.New("item quantity must be positive")
		}
		// Make sure the medicine exists in this tenant before recording it.
		if _, err := s.medicineRepo.GetByID(ctx, req.TenantID, item.MedicineID); err != nil {
			return nil, err
		}
		prescription.Items = append(prescription.Items, &models.PrescriptionItem{
			ID:             uuid.New(),
			PrescriptionID: prescription.ID,
			MedicineID:     item.MedicineID,
			Dosage:         item.Dosage,
			Quantity:       item.Quantity,
		})
	}

	if err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

func (s *prescriptionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Prescription, error) {
	return s.prescriptionRepo.GetByID(ctx, tenantID, id)
}

func (s *prescriptionService) Dispense(ctx context.Context, tenantID, id uuid.UUID) error {
	prescription, err := s.prescriptionRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if prescription.Status == models.PrescriptionStatusDispensed {
		return errors.New("prescription already dispensed")
	}
	prescription.Status = models.PrescriptionStatusDispensed
	return s.prescriptionRepo.Update(ctx, prescription)
}

func (s *prescriptionService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.prescriptionRepo.SoftDelete(ctx, tenantID, id)
}

func (s *prescriptionService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Prescription, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.prescriptionRepo.List(ctx, tenantID, limit, offset)
}

func (s *prescriptionService) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]*models.Prescription, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.prescriptionRepo.ListByCustomer(ctx, tenantID, customerID, limit, offset)
}

// AttachDocument uploads a scan and records its object key on the
// prescription. Keys are tenant-prefixed to keep tenants partitioned inside
// the shared bucket.
func (s *prescriptionService) AttachDocument(ctx context.Context, tenantID, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if s.storageSvc == nil {
		return "", errors.New("document storage is not configured")
	}
	if _, err := s.prescriptionRepo.GetByID(ctx, tenantID, id); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s/%s", tenantID, id, filename)
	if err := s.storageSvc.UploadDocument(ctx, prescriptionBucket, key, contentType, reader, size); err != nil {
		return "", err
	}
	if err := s.prescriptionRepo.SetDocumentKey(ctx, tenantID, id, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *prescriptionService) DocumentURL(ctx context.Context, tenantID, id uuid.UUID) (string, error) {
	if s.storageSvc == nil {
		return "", errors.New("document storage is not configured")
	}
	prescription, err := s.prescriptionRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return "", err
	}
	if prescription.DocumentKey == nil {
		return "", errors.New("prescription has no document")
	}
	return s.storageSvc.GetPresignedURL(prescriptionBucket, *prescription.DocumentKey, 15*time.Minute)
}
