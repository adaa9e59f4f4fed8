package middleware

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/repositories"
)

// AuthMiddleware verifies bearer tokens from the identity provider and
// resolves them to local accounts. With a JWKS URL configured the
// provider's signing keys are used; otherwise the HS256 dev secret.
type AuthMiddleware struct {
	userRepo *repositories.UserRepository
	jwks     *keyfunc.JWKS
	secret   string
}

func NewAuthMiddleware(userRepo *repositories.UserRepository, jwksURL, secret string) (*AuthMiddleware, error) {
	m := &AuthMiddleware{userRepo: userRepo, secret: secret}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:  time.Hour,
			RefreshRateLimit: time.Minute,
			RefreshErrorHandler: func(err error) {
				log.Printf("WARN: JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
		m.jwks = jwks
	} else if secret == "" {
		return nil, fmt.Errorf("either IDP_JWKS_URL or JWT_SECRET must be set")
	}

	return m, nil
}

func (m *AuthMiddleware) keyfunc(token *jwt.Token) (interface{}, error) {
	if m.jwks != nil {
		return m.jwks.Keyfunc(token)
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return []byte(m.secret), nil
}

// Authenticate is the echo middleware. On success the request context
// carries the caller's identity; handlers read it from there.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return common.SendUnauthorizedError(c)
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, m.keyfunc)
		if err != nil || !token.Valid {
			return common.SendUnauthorizedError(c)
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return common.SendUnauthorizedError(c)
		}

		user, err := m.userRepo.GetBySubject(c.Request().Context(), subject)
		if err != nil {
			return common.SendUnauthorizedError(c)
		}

		ctx := common.WithRequestIdentity(c.Request().Context(), user.ID, user.Role, user.TenantID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
