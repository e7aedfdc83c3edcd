package middleware

import (
	"context"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims carries the user and tenant identity in access tokens.
type JWTCustomClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// PropagateClaims copies JWT identity into the request context so services
// and repositories see tenant scoping without touching echo.
func PropagateClaims(c echo.Context, claims *JWTCustomClaims) {
	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, common.TenantIDKey, claims.TenantID)
	c.SetRequest(c.Request().WithContext(ctx))
}
