package handlers

import (
	"errors"
	"net/http"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/models"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// MedicineHandlers handles medicine-related HTTP requests
type MedicineHandlers struct {
	medicineService services.MedicineService
}

func NewMedicineHandlers(medicineService services.MedicineService) *MedicineHandlers {
	return &MedicineHandlers{medicineService: medicineService}
}

// ListMedicinesRequest represents query parameters for listing medicines
type ListMedicinesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *MedicineHandlers) ListMedicines(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListMedicinesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	medicines, err := h.medicineService.List(ctx, tenantID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list medicines")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"medicines": medicines,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}

func (h *MedicineHandlers) CreateMedicine(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CreateMedicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.TenantID = tenantID

	medicine, err := h.medicineService.Create(ctx, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, medicine)
}

func (h *MedicineHandlers) GetMedicine(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	medicine, err := h.medicineService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Medicine")
		}
		return common.SendServerError(c, "Failed to get medicine")
	}

	return c.JSON(http.StatusOK, medicine)
}

func (h *MedicineHandlers) UpdateMedicine(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateMedicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.TenantID = tenantID
	req.ID = id

	medicine, err := h.medicineService.Update(ctx, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Medicine")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, medicine)
}

func (h *MedicineHandlers) DeleteMedicine(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.medicineService.Delete(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to delete medicine")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *MedicineHandlers) SearchMedicines(c echo.Context) error {
	ctx := c.Request().Context()

	var filter models.MedicineSearchFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	filter.Query = c.QueryParam("q")

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	medicines, err := h.medicineService.Search(ctx, tenantID, &filter)
	if err != nil {
		return common.SendServerError(c, "Failed to search medicines")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"medicines": medicines})
}

func (h *MedicineHandlers) GetMedicineByBarcode(c echo.Context) error {
	ctx := c.Request().Context()

	barcode := c.Param("barcode")
	if barcode == "" {
		return common.SendClientError(c, "barcode is required")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	medicine, err := h.medicineService.GetByBarcode(ctx, tenantID, barcode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Medicine")
		}
		return common.SendServerError(c, "Failed to look up barcode")
	}

	return c.JSON(http.StatusOK, medicine)
}

// AdjustStockRequest is the body of a manual stock correction
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

func (h *MedicineHandlers) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	medicine, err := h.medicineService.AdjustStock(ctx, tenantID, id, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "Medicine")
		case errors.Is(err, repositories.ErrInsufficientStock):
			return common.SendConflictError(c, "Insufficient stock for adjustment")
		default:
			return common.SendClientError(c, err.Error())
		}
	}

	return c.JSON(http.StatusOK, medicine)
}

// LowStock returns the complete current under-stock set for the tenant
func (h *MedicineHandlers) LowStock(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	medicines, err := h.medicineService.LowStock(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, "Failed to query low stock")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"medicines": medicines})
}
