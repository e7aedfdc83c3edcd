package handlers

import (
	"errors"
	"net/http"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant management requests
type TenantHandlers struct {
	tenantService services.TenantService
}

func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

type ListTenantsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *TenantHandlers) ListTenants(c echo.Context) error {
	var req ListTenantsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	tenants, err := h.tenantService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list tenants")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"tenants": tenants})
}

func (h *TenantHandlers) GetTenant(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenant, err := h.tenantService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendServerError(c, "Failed to get tenant")
	}

	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.ID = id

	if err := h.tenantService.Update(c.Request().Context(), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
