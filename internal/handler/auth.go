package handler

import (
	"errors"
	"net/http"
	"strings"

	"mindgym-api/internal/dto"
	"mindgym-api/internal/middleware"
	"mindgym-api/internal/repository"
	"mindgym-api/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService   service.AuthService
	secureCookies bool
}

func NewAuthHandler(authService service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}

	user, token, err := h.authService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already in use"})
		}
		return err
	}

	c.SetCookie(h.sessionCookie(token))
	return c.JSON(http.StatusCreated, dto.AuthResponse{User: user})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no account for that email"})
		}
		if errors.Is(err, service.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return err
	}

	c.SetCookie(h.sessionCookie(token))
	return c.JSON(http.StatusOK, dto.AuthResponse{User: user})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.authService.Logout(ctx, cookie.Value); err != nil {
			return err
		}
	}

	expired := h.sessionCookie("")
	expired.MaxAge = -1
	c.SetCookie(expired)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}
