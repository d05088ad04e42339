package services

import (
	"context"

	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/session"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
	"github.com/tunaskarier/portal-api/pkg/jwt"
	"github.com/tunaskarier/portal-api/pkg/logger"
	"go.uber.org/zap"
)

// AuthService exchanges portal credentials for a server-side session and
// a signed cookie token.
type AuthService struct {
	api          UpstreamAPI
	sessions     *session.Store
	tokenManager *jwt.TokenManager
}

// NewAuthService creates an AuthService.
func NewAuthService(api UpstreamAPI, sessions *session.Store, tokenManager *jwt.TokenManager) *AuthService {
	return &AuthService{
		api:          api,
		sessions:     sessions,
		tokenManager: tokenManager,
	}
}

// Login authenticates against the upstream backend, stores the bearer
// token server-side and returns the portal token for the session cookie.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (string, *models.Session, error) {
	auth, err := s.api.Login(ctx, req.Email, req.Password)
	if err != nil {
		return "", nil, err
	}

	sess, err := s.sessions.Create(auth.Token, auth.Role, auth.UserID, auth.StudentID)
	if err != nil {
		return "", nil, err
	}

	portalToken, err := s.tokenManager.GenerateToken(sess.ID, sess.UserID, sess.StudentID, sess.Role.String())
	if err != nil {
		s.sessions.Invalidate(sess.ID, "token_generation_failed")
		return "", nil, apperrors.InternalError("failed to issue session token")
	}

	logger.Info("Portal login",
		zap.String("role", sess.Role.String()),
		zap.String("user_id", sess.UserID))

	return portalToken, sess, nil
}

// Logout invalidates the session. Missing sessions are not an error; the
// outcome is the same either way.
func (s *AuthService) Logout(sessionID string) {
	s.sessions.Invalidate(sessionID, "logout")
}

// RegisterStudent forwards a student self-registration to the backend.
// Registration does not create a session; the student logs in afterwards.
func (s *AuthService) RegisterStudent(ctx context.Context, req *models.RegisterStudentRequest) error {
	return s.api.RegisterStudent(ctx, req)
}
