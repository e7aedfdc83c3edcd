package handlers

import (
	"net/http"
	"time"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandlers serves dashboard reporting endpoints
type ReportHandlers struct {
	reportService services.ReportService
}

func NewReportHandlers(reportService services.ReportService) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// DailySales returns the sales summary for a single day, defaulting to today.
func (h *ReportHandlers) DailySales(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	day := time.Now()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return common.SendValidationError(c, "date", "expected YYYY-MM-DD")
		}
		day = parsed
	}

	summary, err := h.reportService.DailySales(ctx, tenantID, day)
	if err != nil {
		return common.SendServerError(c, "Failed to generate sales report")
	}

	return c.JSON(http.StatusOK, summary)
}

// SalesRange returns an aggregate summary over an arbitrary date range.
func (h *ReportHandlers) SalesRange(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return common.SendValidationError(c, "from", "expected YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", c.QueryParam("to"))
	if err != nil {
		return common.SendValidationError(c, "to", "expected YYYY-MM-DD")
	}

	summary, err := h.reportService.SalesBetween(ctx, tenantID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return common.SendServerError(c, "Failed to generate sales report")
	}

	return c.JSON(http.StatusOK, summary)
}

// InventoryHealth returns stock counts plus low-stock and expiring lists.
func (h *ReportHandlers) InventoryHealth(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	windowDays := 0
	if raw := c.QueryParam("expiry_window_days"); raw != "" {
		if err := echo.QueryParamsBinder(c).Int("expiry_window_days", &windowDays).BindError(); err != nil {
			return common.SendValidationError(c, "expiry_window_days", "expected an integer")
		}
	}

	report, err := h.reportService.InventoryHealth(ctx, tenantID, windowDays)
	if err != nil {
		return common.SendServerError(c, "Failed to generate inventory report")
	}

	return c.JSON(http.StatusOK, report)
}
