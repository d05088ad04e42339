package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tunaskarier/portal-api/config"
	"github.com/tunaskarier/portal-api/internal/middleware"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/services"
)

type AuthHandler struct {
	service       *services.AuthService
	sessionConfig config.SessionConfig
}

func NewAuthHandler(service *services.AuthService, sessionConfig config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: service, sessionConfig: sessionConfig}
}

// Login authenticates portal credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "Email dan password wajib diisi", err)
		return
	}

	token, sess, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	ttlSeconds := h.sessionConfig.TTLHours * 3600
	middleware.SetSessionCookie(c, token, ttlSeconds, h.sessionConfig.CookieDomain, h.sessionConfig.CookieSecure)

	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		Role:    sess.Role,
		Session: sess,
	})
}

// Logout invalidates the session and clears the cookie. It succeeds even when
// no session exists.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess, err := middleware.GetSession(c); err == nil {
		h.service.Logout(sess.ID)
	}
	middleware.ClearSessionCookie(c, h.sessionConfig.CookieDomain, h.sessionConfig.CookieSecure)

	c.JSON(http.StatusOK, models.LogoutResponse{Success: true})
}

// Session reports the authenticated session's identity for client bootstrap.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	data := gin.H{
		"role":    sess.Role.String(),
		"user_id": sess.UserID,
	}
	if sess.StudentID != "" {
		data["student_id"] = sess.StudentID
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// RegisterStudent forwards a student self-registration to the backend.
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req models.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "Data pendaftaran tidak lengkap", err)
		return
	}

	if err := h.service.RegisterStudent(c.Request.Context(), &req); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Pendaftaran berhasil, silakan login",
	})
}
