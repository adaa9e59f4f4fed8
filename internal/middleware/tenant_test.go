package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"devboma/internal/common"
	"devboma/internal/models"
)

func newGuardedContext(t *testing.T, clientID string, role string, ownTenant *uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		ctx := common.WithRequestIdentity(req.Context(), uuid.New(), role, ownTenant)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("clientId")
	c.SetParamValues(clientID)
	return c, rec
}

func TestTenantGuard_AdminPassesForAnyTenant(t *testing.T) {
	tenantID := uuid.New()
	called := false
	next := func(c echo.Context) error {
		called = true
		resolved, ok := common.GetTenantIDFromContext(c.Request().Context())
		assert.True(t, ok)
		assert.Equal(t, tenantID, resolved)
		return c.NoContent(http.StatusOK)
	}

	c, rec := newGuardedContext(t, tenantID.String(), models.RoleAdmin, nil)
	err := TenantGuard(next)(c)

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantGuard_ClientPassesForOwnTenant(t *testing.T) {
	tenantID := uuid.New()
	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}

	c, rec := newGuardedContext(t, tenantID.String(), models.RoleClient, &tenantID)
	err := TenantGuard(next)(c)

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantGuard_ClientBlockedForOtherTenant(t *testing.T) {
	ownTenant := uuid.New()
	otherTenant := uuid.New()
	next := func(c echo.Context) error {
		t.Fatal("handler must not run for a foreign tenant")
		return nil
	}

	c, rec := newGuardedContext(t, otherTenant.String(), models.RoleClient, &ownTenant)
	err := TenantGuard(next)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "TENANT_MISMATCH")
}

func TestTenantGuard_MalformedClientIDRejected(t *testing.T) {
	next := func(c echo.Context) error {
		t.Fatal("handler must not run for a malformed client id")
		return nil
	}

	c, rec := newGuardedContext(t, "not-a-uuid", models.RoleAdmin, nil)
	err := TenantGuard(next)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantGuard_MissingIdentityRejected(t *testing.T) {
	next := func(c echo.Context) error {
		t.Fatal("handler must not run without identity")
		return nil
	}

	c, rec := newGuardedContext(t, uuid.New().String(), "", nil)
	err := TenantGuard(next)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_ClientBlocked(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	tenantID := uuid.New()
	req = req.WithContext(common.WithRequestIdentity(req.Context(), uuid.New(), models.RoleClient, &tenantID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireAdmin(func(c echo.Context) error {
		t.Fatal("handler must not run for non-admins")
		return nil
	})(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
