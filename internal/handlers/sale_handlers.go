package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// SaleHandlers handles point-of-sale HTTP requests
type SaleHandlers struct {
	saleService services.SaleService
}

func NewSaleHandlers(saleService services.SaleService) *SaleHandlers {
	return &SaleHandlers{saleService: saleService}
}

func (h *SaleHandlers) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	cashierID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	req.TenantID = tenantID
	req.CashierID = cashierID

	sale, err := h.saleService.Checkout(ctx, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Medicine")
		}
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return common.SendConflictError(c, "Insufficient stock")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandlers) GetSale(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	sale, err := h.saleService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Sale")
		}
		return common.SendServerError(c, "Failed to get sale")
	}

	return c.JSON(http.StatusOK, sale)
}

type ListSalesRequest struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	From   string `query:"from"`
	To     string `query:"to"`
}

func (h *SaleHandlers) ListSales(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListSalesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if req.From != "" || req.To != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return common.SendValidationError(c, "from", "expected YYYY-MM-DD")
		}
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return common.SendValidationError(c, "to", "expected YYYY-MM-DD")
		}
		sales, err := h.saleService.ListByDateRange(ctx, tenantID, from, to.AddDate(0, 0, 1))
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"sales": sales})
	}

	sales, err := h.saleService.List(ctx, tenantID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list sales")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"sales": sales})
}
