package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tunaskarier/portal-api/internal/middleware"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/services"
)

type ProfileHandler struct {
	service *services.ProfileService
}

func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile returns the authenticated account's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	record, err := h.service.GetProfile(c.Request.Context(), sess)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": record})
}

// UpdateProfile updates the authenticated account's profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	var payload models.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Data profil tidak valid", err)
		return
	}

	record, err := h.service.UpdateProfile(c.Request.Context(), sess, payload)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Profil berhasil diperbarui", "data": record})
}

// UpdatePassword changes the authenticated account's password.
func (h *ProfileHandler) UpdatePassword(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "Password baru minimal 6 karakter", err)
		return
	}

	if err := h.service.UpdatePassword(c.Request.Context(), sess, &req); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password berhasil diubah"})
}
