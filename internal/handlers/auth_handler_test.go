package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tunaskarier/portal-api/config"
	"github.com/tunaskarier/portal-api/internal/handlers"
	"github.com/tunaskarier/portal-api/internal/middleware"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/services"
	"github.com/tunaskarier/portal-api/internal/session"
	"github.com/tunaskarier/portal-api/internal/upstream"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
	"github.com/tunaskarier/portal-api/pkg/jwt"
)

type authFixture struct {
	api    *MockUpstreamAPI
	store  *session.Store
	guard  *middleware.RoleGuard
	router *gin.Engine
}

func newAuthFixture() *authFixture {
	api := new(MockUpstreamAPI)
	store := session.NewStore(1)
	tm := jwt.NewTokenManager("test-secret-key-for-handler-tests", "tunaskarier-portal", 24)
	guard := middleware.NewRoleGuard(tm, store, "/login", "", false)
	svc := services.NewAuthService(api, store, tm)
	handler := handlers.NewAuthHandler(svc, config.SessionConfig{
		JWTIssuer: "tunaskarier-portal",
		TTLHours:  24,
	})

	router := gin.New()
	router.POST("/api/v1/auth/login", handler.Login)
	router.POST("/api/v1/auth/logout", guard.ResolveSession(), handler.Logout)
	router.POST("/api/v1/auth/register-student", handler.RegisterStudent)
	router.GET("/portal/admin/home", guard.RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &authFixture{api: api, store: store, guard: guard, router: router}
}

func postJSON(router *gin.Engine, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandlerLoginSetsSessionCookie(t *testing.T) {
	f := newAuthFixture()

	f.api.On("Login", mock.Anything, "admin@tunaskarier.id", "rahasia1").
		Return(&upstream.AuthResult{
			Token:  "bearer-token",
			UserID: "user-1",
			Role:   models.RoleAdmin,
		}, nil).Once()

	w := postJSON(f.router, "/api/v1/auth/login", `{"email":"admin@tunaskarier.id","password":"rahasia1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	// Raw bearer token never reaches the browser.
	assert.NotContains(t, w.Body.String(), "bearer-token")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestAuthHandlerLoginMissingFields(t *testing.T) {
	f := newAuthFixture()

	w := postJSON(f.router, "/api/v1/auth/login", `{"email":"admin@tunaskarier.id"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "wajib diisi")
	f.api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	f := newAuthFixture()

	f.api.On("Login", mock.Anything, "admin@tunaskarier.id", "salah123").
		Return(nil, &apperrors.UpstreamError{StatusCode: 401, Message: "Email atau password salah"}).Once()

	w := postJSON(f.router, "/api/v1/auth/login", `{"email":"admin@tunaskarier.id","password":"salah123"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Email atau password salah")
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	f := newAuthFixture()

	w := postJSON(f.router, "/api/v1/auth/logout", "")

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAuthHandlerLogoutInvalidatesSession(t *testing.T) {
	f := newAuthFixture()

	f.api.On("Login", mock.Anything, "admin@tunaskarier.id", "rahasia1").
		Return(&upstream.AuthResult{
			Token:  "bearer-token",
			UserID: "user-1",
			Role:   models.RoleAdmin,
		}, nil).Once()

	w := postJSON(f.router, "/api/v1/auth/login", `{"email":"admin@tunaskarier.id","password":"rahasia1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Result().Cookies()[0]

	// The cookie admits a guarded admin route before logout.
	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/portal/admin/home", http.NoBody)
	req.AddCookie(cookie)
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Logout with the cookie attached.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/v1/auth/logout", http.NoBody)
	req.AddCookie(cookie)
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// The replayed cookie no longer resolves to a session.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/portal/admin/home", http.NoBody)
	req.AddCookie(cookie)
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAuthHandlerRegisterStudent(t *testing.T) {
	f := newAuthFixture()

	f.api.On("RegisterStudent", mock.Anything, mock.MatchedBy(func(req *models.RegisterStudentRequest) bool {
		return req.Email == "budi@tunaskarier.id"
	})).Return(nil).Once()

	w := postJSON(f.router, "/api/v1/auth/register-student",
		`{"name":"Budi Santoso","email":"budi@tunaskarier.id","password":"rahasia1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Pendaftaran berhasil")
	f.api.AssertExpectations(t)
}

func TestHealthHandlerHealthcheck(t *testing.T) {
	handler := handlers.NewHealthHandler(func() bool { return true })
	router := gin.New()
	router.GET("/healthcheck", handler.Healthcheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthcheck", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache, no-store, max-age=0, must-revalidate", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandlerUnavailable(t *testing.T) {
	handler := handlers.NewHealthHandler(func() bool { return false })
	router := gin.New()
	router.GET("/healthcheck", handler.Healthcheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthcheck", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
