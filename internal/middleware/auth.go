package middleware

import (
	"errors"
	"net/http"

	"mindgym-api/internal/dto"
	"mindgym-api/internal/repository"
	"mindgym-api/internal/service"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the session token. The value is
// the session document id; the cookie itself is the sole credential for
// authenticated requests.
const SessionCookieName = "mindgym_session"

const userContextKey = "user"

// Session authenticates the request from the session cookie and stores the
// sanitized user in the echo context.
func Session(auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			}

			user, err := auth.ValidateSession(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
				}
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// UserFrom returns the authenticated user placed in the context by Session.
func UserFrom(c echo.Context) (*dto.User, bool) {
	user, ok := c.Get(userContextKey).(*dto.User)
	return user, ok
}
