package middleware

import (
	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
)

// TenantGuard resolves the :clientId route parameter against the caller's
// identity. Platform admins may act for any tenant; client users only for
// their own. The resolved tenant travels in the request context, so
// downstream code never trusts the URL alone.
func TenantGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, err := common.ValidateUUID(c.Param("clientId"), "clientId")
		if err != nil {
			return common.SendValidationError(c, "clientId", err.Error())
		}

		ctx := c.Request().Context()
		role, ok := common.GetUserRoleFromContext(ctx)
		if !ok {
			return common.SendUnauthorizedError(c)
		}

		switch role {
		case models.RoleAdmin:
			// admins pass for any tenant
		case models.RoleClient:
			own, ok := common.GetTenantIDFromContext(ctx)
			if !ok || own != tenantID {
				return common.SendForbiddenError(c, "TENANT_MISMATCH",
					"you do not have access to this client")
			}
		default:
			return common.SendForbiddenError(c, "FORBIDDEN", "unknown role")
		}

		c.SetRequest(c.Request().WithContext(common.WithTenant(ctx, tenantID)))
		return next(c)
	}
}

// RequireAdmin restricts a route to platform admins.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := common.GetUserRoleFromContext(c.Request().Context())
		if !ok {
			return common.SendUnauthorizedError(c)
		}
		if role != models.RoleAdmin {
			return common.SendForbiddenError(c, "FORBIDDEN", "admin access required")
		}
		return next(c)
	}
}
