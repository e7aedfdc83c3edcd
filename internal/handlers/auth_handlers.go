package handlers

import (
	"errors"
	"net/http"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles signup, login and token refresh
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Signup registers a new pharmacy tenant and its admin account
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenant, user, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"tenant": tenant,
		"user":   user,
	})
}

// Login authenticates a user within a tenant and returns a token pair
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tokens, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		return common.SendServerError(c, "Login failed")
	}

	return c.JSON(http.StatusOK, tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token into a fresh token pair
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	return c.JSON(http.StatusOK, tokens)
}
