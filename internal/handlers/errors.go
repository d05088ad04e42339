package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin
// context so the observability middleware can include the reason in the
// request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// respondValidationError sends a 422 with per-field messages when the bind
// failure came from struct validation, falling back to a plain 400.
func respondValidationError(c *gin.Context, message string, err error) {
	if details := ParseValidationErrors(err); len(details) > 0 {
		attachError(c, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "message": message, "errors": details})
		return
	}
	respondError(c, http.StatusBadRequest, message, err)
}

// respondUpstreamError maps an upstream failure to the portal response. The
// message shown to the user follows the backend's own wording when it sent
// one.
func respondUpstreamError(c *gin.Context, err error) {
	respondError(c, statusFromError(err), apperrors.UserMessage(err), err)
}

// statusFromError maps service-layer errors to portal HTTP statuses.
func statusFromError(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case apperrors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case apperrors.Is(err, apperrors.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
