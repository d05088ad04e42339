package services

import (
	"context"

	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/session"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
)

// ProfileService proxies the logged-in account's profile operations.
type ProfileService struct {
	api      UpstreamAPI
	sessions *session.Store
}

// NewProfileService creates a ProfileService.
func NewProfileService(api UpstreamAPI, sessions *session.Store) *ProfileService {
	return &ProfileService{api: api, sessions: sessions}
}

// GetProfile returns the current account's profile record.
func (s *ProfileService) GetProfile(ctx context.Context, sess *models.Session) (models.Record, error) {
	record, err := s.api.GetProfile(ctx, sess.Token)
	if err != nil {
		s.invalidateOnUnauthorized(sess, err)
		return nil, err
	}
	return record, nil
}

// UpdateProfile updates the current account's profile record.
func (s *ProfileService) UpdateProfile(ctx context.Context, sess *models.Session, payload models.Record) (models.Record, error) {
	record, err := s.api.UpdateProfile(ctx, sess.Token, payload)
	if err != nil {
		s.invalidateOnUnauthorized(sess, err)
		return nil, err
	}
	return record, nil
}

// UpdatePassword changes the current account's password. The session
// stays alive; the upstream token is unchanged by a password update.
func (s *ProfileService) UpdatePassword(ctx context.Context, sess *models.Session, req *models.UpdatePasswordRequest) error {
	if err := s.api.UpdatePassword(ctx, sess.Token, req); err != nil {
		s.invalidateOnUnauthorized(sess, err)
		return err
	}
	return nil
}

func (s *ProfileService) invalidateOnUnauthorized(sess *models.Session, err error) {
	if apperrors.Is(err, apperrors.ErrUnauthorized) {
		s.sessions.Invalidate(sess.ID, "upstream_unauthorized")
	}
}
