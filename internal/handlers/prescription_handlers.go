package handlers

import (
	"errors"
	"net/http"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// PrescriptionHandlers handles prescription-related HTTP requests
type PrescriptionHandlers struct {
	prescriptionService services.PrescriptionService
}

func NewPrescriptionHandlers(prescriptionService services.PrescriptionService) *PrescriptionHandlers {
	return &PrescriptionHandlers{prescriptionService: prescriptionService}
}

type ListPrescriptionsRequest struct {
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
	CustomerID string `query:"customer_id"`
}

func (h *PrescriptionHandlers) ListPrescriptions(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListPrescriptionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if req.CustomerID != "" {
		customerID, err := common.ValidateUUID(req.CustomerID, "customer_id")
		if err != nil {
			return common.SendValidationError(c, "customer_id", err.Error())
		}
		prescriptions, err := h.prescriptionService.ListByCustomer(ctx, tenantID, customerID, req.Limit, req.Offset)
		if err != nil {
			return common.SendServerError(c, "Failed to list prescriptions")
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"prescriptions": prescriptions})
	}

	prescriptions, err := h.prescriptionService.List(ctx, tenantID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list prescriptions")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"prescriptions": prescriptions})
}

func (h *PrescriptionHandlers) CreatePrescription(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CreatePrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.TenantID = tenantID

	prescription, err := h.prescriptionService.Create(ctx, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Medicine")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, prescription)
}

func (h *PrescriptionHandlers) GetPrescription(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	prescription, err := h.prescriptionService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Prescription")
		}
		return common.SendServerError(c, "Failed to get prescription")
	}

	return c.JSON(http.StatusOK, prescription)
}

func (h *PrescriptionHandlers) DispensePrescription(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.prescriptionService.Dispense(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Prescription")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *PrescriptionHandlers) DeletePrescription(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.prescriptionService.Delete(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to delete prescription")
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadDocument stores a prescription scan and records its object key
func (h *PrescriptionHandlers) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	file, err := c.FormFile("document")
	if err != nil {
		return common.SendClientError(c, "document file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read document")
	}
	defer src.Close()

	key, err := h.prescriptionService.AttachDocument(ctx, tenantID, id, file.Filename, file.Header.Get(echo.HeaderContentType), src, file.Size)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Prescription")
		}
		return common.SendServerError(c, "Failed to store document")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{"document_key": key})
}

// DocumentURL returns a short-lived presigned URL for the stored scan
func (h *PrescriptionHandlers) DocumentURL(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	url, err := h.prescriptionService.DocumentURL(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Prescription")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"url": url})
}
