package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/repositories"
)

type AuthHandlers struct {
	userRepo *repositories.UserRepository
}

func NewAuthHandlers(userRepo *repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{userRepo: userRepo}
}

// Me returns the authenticated caller's account.
func (h *AuthHandlers) Me(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, user)
}
