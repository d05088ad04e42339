package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/session"
	"github.com/tunaskarier/portal-api/pkg/jwt"
	"github.com/tunaskarier/portal-api/pkg/metrics"
)

const (
	// SessionCookieName is the portal session cookie.
	SessionCookieName = "portal_session"

	// SessionContextKey stores the authenticated session in request context.
	SessionContextKey = "portal_session"
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// Admit lets the navigation proceed.
	Admit Decision = iota
	// Redirect sends the client to the login path.
	Redirect
)

// RoleGuard gates role-scoped route subtrees. Evaluation reads the signed
// cookie and the server-side store only; token authenticity against the
// upstream is established lazily, by the first upstream call that fails.
type RoleGuard struct {
	tokenManager *jwt.TokenManager
	store        *session.Store
	loginPath    string
	cookieDomain string
	cookieSecure bool
}

// NewRoleGuard creates a guard backed by the given token manager and store.
func NewRoleGuard(tokenManager *jwt.TokenManager, store *session.Store, loginPath, cookieDomain string, cookieSecure bool) *RoleGuard {
	return &RoleGuard{
		tokenManager: tokenManager,
		store:        store,
		loginPath:    loginPath,
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
	}
}

// EvaluateAccess decides whether the holder of cookieValue may enter the
// requiredRole subtree. It never fails: absent or mismatched credentials
// are a Redirect, not an error. reason is set on Redirect for metrics.
func (g *RoleGuard) EvaluateAccess(cookieValue string, requiredRole models.Role) (*models.Session, Decision, string) {
	if cookieValue == "" {
		return nil, Redirect, "no_session"
	}

	claims, err := g.tokenManager.ValidateToken(cookieValue)
	if err != nil {
		return nil, Redirect, "invalid_token"
	}

	sess := g.store.Get(claims.SessionID)
	if sess == nil {
		// Invalidated centrally (logout or upstream 401) or expired.
		return nil, Redirect, "no_session"
	}

	if sess.Role != requiredRole {
		return nil, Redirect, "role_mismatch"
	}

	return sess, Admit, ""
}

// RequireRole returns middleware admitting only sessions with the given
// role. Rejections redirect with 303 See Other, so the disallowed route is
// replaced in the browser history rather than pushed.
func (g *RoleGuard) RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(SessionCookieName) //nolint:errcheck // absent cookie handled as empty value

		sess, decision, reason := g.EvaluateAccess(cookie, requiredRole)
		if decision == Redirect {
			metrics.GuardRejections.WithLabelValues(requiredRole.String(), reason).Inc()
			if cookie != "" && reason != "role_mismatch" {
				// Cookie refers to nothing valid anymore, drop it.
				ClearSessionCookie(c, g.cookieDomain, g.cookieSecure)
			}
			_ = c.Error(fmt.Errorf("guard rejected access: %s", reason)) //nolint:errcheck
			c.Redirect(http.StatusSeeOther, g.loginPath)
			c.Abort()
			return
		}

		c.Set(SessionContextKey, sess)
		c.Next()
	}
}

// RequireAnySession admits any complete session regardless of role, for
// endpoints shared by every role (current-session lookup, profile).
func (g *RoleGuard) RequireAnySession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(SessionCookieName) //nolint:errcheck

		if cookie == "" {
			c.Redirect(http.StatusSeeOther, g.loginPath)
			c.Abort()
			return
		}
		claims, err := g.tokenManager.ValidateToken(cookie)
		if err != nil {
			ClearSessionCookie(c, g.cookieDomain, g.cookieSecure)
			c.Redirect(http.StatusSeeOther, g.loginPath)
			c.Abort()
			return
		}
		sess := g.store.Get(claims.SessionID)
		if sess == nil {
			ClearSessionCookie(c, g.cookieDomain, g.cookieSecure)
			c.Redirect(http.StatusSeeOther, g.loginPath)
			c.Abort()
			return
		}

		c.Set(SessionContextKey, sess)
		c.Next()
	}
}

// ResolveSession places the cookie's session in context when it still
// resolves, and continues either way. Used by endpoints that need to know
// who the caller is but must also work for anonymous callers, such as
// logout with an already-dead cookie.
func (g *RoleGuard) ResolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(SessionCookieName) //nolint:errcheck
		if cookie != "" {
			if claims, err := g.tokenManager.ValidateToken(cookie); err == nil {
				if sess := g.store.Get(claims.SessionID); sess != nil {
					c.Set(SessionContextKey, sess)
				}
			}
		}
		c.Next()
	}
}

// GetSession extracts the session placed in context by the guard.
func GetSession(c *gin.Context) (*models.Session, error) {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	sess, ok := val.(*models.Session)
	if !ok {
		return nil, ErrInvalidSession
	}

	return sess, nil
}

// SetSessionCookie sets the portal session cookie.
func SetSessionCookie(c *gin.Context, token string, ttlSeconds int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		token,
		ttlSeconds,
		"/",
		domain,
		secure,
		true, // HttpOnly
	)
}

// ClearSessionCookie clears the portal session cookie.
func ClearSessionCookie(c *gin.Context, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		domain,
		secure,
		true, // HttpOnly
	)
}
