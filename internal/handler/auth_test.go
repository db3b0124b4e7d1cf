package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mindgym-api/internal/dto"
	"mindgym-api/internal/middleware"
	"mindgym-api/internal/repository"
	"mindgym-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	user       *dto.User
	token      string
	err        error
	loggedOut  []string
	registered int
	loggedIn   int
}

func (s *stubAuthService) Register(context.Context, string, string, string) (*dto.User, string, error) {
	s.registered++
	return s.user, s.token, s.err
}

func (s *stubAuthService) Login(context.Context, string, string) (*dto.User, string, error) {
	s.loggedIn++
	return s.user, s.token, s.err
}

func (s *stubAuthService) ValidateSession(context.Context, string) (*dto.User, error) {
	return s.user, s.err
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func newAuthContext(method, target, body string, cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", middleware.SessionCookieName)
	return nil
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	stub := &stubAuthService{
		user:  &dto.User{ID: "507f1f77bcf86cd799439011", Name: "Alice", Email: "alice@example.com"},
		token: "507f1f77bcf86cd799439012",
	}
	h := NewAuthHandler(stub, true)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"pw-one-two-three"}`, nil)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasPaid":false`)
	assert.NotContains(t, rec.Body.String(), "password")

	cookie := sessionCookieFrom(t, rec)
	assert.Equal(t, "507f1f77bcf86cd799439012", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(service.SessionTTL.Seconds()), cookie.MaxAge)
}

func TestRegisterMissingFields(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, false)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/register",
		`{"name":"","email":"alice@example.com","password":"pw"}`, nil)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stub.registered)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	stub := &stubAuthService{err: repository.ErrEmailExists}
	h := NewAuthHandler(stub, false)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"pw-one-two-three"}`, nil)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already in use")
}

func TestLoginUnknownEmail(t *testing.T) {
	stub := &stubAuthService{err: repository.ErrNotFound}
	h := NewAuthHandler(stub, false)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.com","password":"pw"}`, nil)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	stub := &stubAuthService{err: service.ErrUnauthenticated}
	h := NewAuthHandler(stub, false)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`, nil)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLoginSetsSessionCookie(t *testing.T) {
	stub := &stubAuthService{
		user:  &dto.User{ID: "507f1f77bcf86cd799439011", Name: "Alice", Email: "alice@example.com", HasPaid: true},
		token: "507f1f77bcf86cd799439013",
	}
	h := NewAuthHandler(stub, false)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"pw-one-two-three"}`, nil)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasPaid":true`)
	cookie := sessionCookieFrom(t, rec)
	assert.Equal(t, "507f1f77bcf86cd799439013", cookie.Value)
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, false)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/logout", "",
		&http.Cookie{Name: middleware.SessionCookieName, Value: "current-token"})
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"current-token"}, stub.loggedOut)

	cookie := sessionCookieFrom(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestLogoutWithoutCookie(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, false)

	c, rec := newAuthContext(http.MethodPost, "/api/auth/logout", "", nil)
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, stub.loggedOut)
}
