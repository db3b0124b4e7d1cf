package handler

import (
	"net/http"

	"mindgym-api/internal/middleware"

	"github.com/labstack/echo/v4"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me returns the authenticated user, including the paid flag the client uses
// to gate premium training tasks.
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
