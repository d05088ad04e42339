package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tunaskarier/portal-api/internal/listview"
	"github.com/tunaskarier/portal-api/internal/middleware"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/services"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
)

// ResourceHandler maps the portal's list, detail and mutation routes onto
// the resource service. The resource name comes from the route parameter;
// visibility for the caller's role is enforced by the service.
type ResourceHandler struct {
	service *services.ResourceService
}

func NewResourceHandler(service *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// List renders the list screen state. Query parameters page, limit, q and
// refresh adjust the session's controller before the snapshot is taken;
// absent parameters leave the controller as the user last left it.
func (h *ResourceHandler) List(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	params := services.ViewParams{Refresh: c.Query("refresh") == "true"}
	if raw, ok := c.GetQuery("page"); ok {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			respondError(c, http.StatusBadRequest, "Parameter page tidak valid", err)
			return
		}
		params.Page = &page
	}
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(c, http.StatusBadRequest, "Parameter limit tidak valid", err)
			return
		}
		params.Limit = &limit
	}
	if raw, ok := c.GetQuery("q"); ok {
		params.Query = &raw
	}

	snap, err := h.service.View(c.Request.Context(), sess, c.Param("resource"), params)
	if err != nil {
		if apperrors.Is(err, listview.ErrPageSizeNotAllowed) {
			respondError(c, http.StatusBadRequest, "Ukuran halaman tidak tersedia", err)
			return
		}
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse(snap))
}

// Get renders a single record for the detail screen.
func (h *ResourceHandler) Get(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	record, err := h.service.GetRecord(c.Request.Context(), sess, c.Param("resource"), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": record})
}

// Create forwards a new record to the backend and reloads the list.
func (h *ResourceHandler) Create(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	var payload models.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Data tidak valid", err)
		return
	}

	record, err := h.service.CreateRecord(c.Request.Context(), sess, c.Param("resource"), payload)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "message": "Data berhasil ditambahkan", "data": record})
}

// Update forwards record changes to the backend and reloads the list.
func (h *ResourceHandler) Update(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	var payload models.Record
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Data tidak valid", err)
		return
	}

	record, err := h.service.UpdateRecord(c.Request.Context(), sess, c.Param("resource"), c.Param("id"), payload)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Data berhasil diperbarui", "data": record})
}

// Delete is the two-step removal. Without confirm=true it registers the
// pending delete and returns the confirmation prompt with 409; with
// confirm=true it executes the delete and returns the refreshed list.
func (h *ResourceHandler) Delete(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	resource := c.Param("resource")
	id := c.Param("id")

	if c.Query("confirm") != "true" {
		prompt, err := h.service.RequestDelete(sess, resource, id)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		c.JSON(http.StatusConflict, gin.H{
			"status":  "confirm",
			"message": prompt,
			"confirm": gin.H{"resource": resource, "id": id},
		})
		return
	}

	if err := h.service.ConfirmDelete(c.Request.Context(), sess, resource, id); err != nil {
		respondUpstreamError(c, err)
		return
	}

	snap, err := h.service.View(c.Request.Context(), sess, resource, services.ViewParams{})
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	resp := listResponse(snap)
	resp["message"] = "Data berhasil dihapus"
	c.JSON(http.StatusOK, resp)
}

// CancelDelete drops a pending delete without touching the backend.
func (h *ResourceHandler) CancelDelete(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sesi tidak ditemukan", err)
		return
	}

	if err := h.service.CancelDelete(sess, c.Param("resource")); err != nil {
		respondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Penghapusan dibatalkan"})
}

// listResponse renders a controller snapshot in the portal envelope.
func listResponse(snap listview.Snapshot[models.Record]) gin.H {
	resp := gin.H{
		"status": snap.State.String(),
		"data":   snap.Items,
		"pagination": models.Pagination{
			Total:      snap.Total,
			TotalPages: snap.TotalPages,
			Page:       snap.Page,
			Limit:      snap.PageSize,
		},
		"pages":      snap.Pages,
		"rangeLabel": snap.RangeLabel,
		"search":     snap.SearchText,
	}
	if snap.ErrorMessage != "" {
		resp["message"] = snap.ErrorMessage
	}
	if snap.PendingDelete != "" {
		resp["pendingDelete"] = snap.PendingDelete
	}
	return resp
}
