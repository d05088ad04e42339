package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tunaskarier/portal-api/internal/middleware"
)

func TestRateLimiter_Middleware(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 2) // 1 req/sec, burst of 2
	defer rl.Stop()

	router := gin.New()
	router.GET("/ping", rl.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ping", http.NoBody)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusOK, do())
	// Burst exhausted.
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := middleware.NewRateLimiter(10, 10)
	rl.Stop()
	rl.Stop()
}

func TestBodySizeLimit_RejectsOversizedBody(t *testing.T) {
	router := gin.New()
	router.POST("/submit", middleware.BodySizeLimitMiddleware(16), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", strings.NewReader(strings.Repeat("a", 64)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Ukuran permintaan terlalu besar")
}

func TestBodySizeLimit_AllowsSmallBodyAndGET(t *testing.T) {
	router := gin.New()
	router.POST("/submit", middleware.BodySizeLimitMiddleware(1024), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/fetch", middleware.BodySizeLimitMiddleware(1), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/submit", strings.NewReader(`{"ok":true}`))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/fetch", http.NoBody)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
