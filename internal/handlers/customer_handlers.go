package handlers

import (
	"errors"
	"net/http"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// CustomerHandlers handles customer-related HTTP requests
type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

type ListCustomersRequest struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Query  string `query:"q"`
}

func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListCustomersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customers, err := h.customerService.Search(ctx, tenantID, req.Query, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list customers")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.TenantID = tenantID

	customer, err := h.customerService.Create(ctx, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customer, err := h.customerService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Customer")
		}
		return common.SendServerError(c, "Failed to get customer")
	}

	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.TenantID = tenantID
	req.ID = id

	if err := h.customerService.Update(ctx, &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Customer")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.customerService.Delete(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to delete customer")
	}

	return c.NoContent(http.StatusNoContent)
}
