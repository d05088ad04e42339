package services

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tunaskarier/portal-api/config"
	"github.com/tunaskarier/portal-api/internal/listview"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/session"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
	"github.com/tunaskarier/portal-api/pkg/logger"
	"go.uber.org/zap"
)

// ViewParams are the list-screen inputs carried on a portal request.
// Nil pointers mean "unchanged".
type ViewParams struct {
	Page    *int
	Limit   *int
	Query   *string
	Refresh bool
}

// ResourceService owns one list controller per (session, resource) and
// proxies record CRUD to the upstream backend. Controllers live in a TTL
// cache aligned with the session lifetime, so a screen's page, size and
// search text survive across navigations the way SPA component state does.
type ResourceService struct {
	api         UpstreamAPI
	sessions    *session.Store
	controllers *gocache.Cache
	pagination  config.PaginationConfig
}

// NewResourceService creates a ResourceService.
func NewResourceService(api UpstreamAPI, sessions *session.Store, pagination config.PaginationConfig) *ResourceService {
	return &ResourceService{
		api:         api,
		sessions:    sessions,
		controllers: gocache.New(sessions.TTL(), 10*time.Minute),
		pagination:  pagination,
	}
}

// View applies the request parameters to the controller for (sess,
// resource) and returns its snapshot. Parameter precedence follows the
// screen's event model: a size change resets to page one and wins over a
// simultaneous page change.
func (s *ResourceService) View(ctx context.Context, sess *models.Session, resource string, params ViewParams) (listview.Snapshot[models.Record], error) {
	ctl, err := s.controllerFor(sess, resource)
	if err != nil {
		return listview.Snapshot[models.Record]{}, err
	}

	if params.Query != nil {
		ctl.SetSearchText(*params.Query)
	}

	snap := ctl.Snapshot()
	switch {
	case params.Limit != nil && *params.Limit != snap.PageSize:
		err = ctl.ChangePageSize(ctx, *params.Limit)
	case snap.State == listview.StateIdle:
		// First load: the controller has no totalPages yet, so a
		// deep-linked page must go through Load, not ChangePage.
		page := 1
		if params.Page != nil {
			page = *params.Page
		}
		err = ctl.Load(ctx, page, snap.PageSize)
	case params.Page != nil && *params.Page != snap.Page:
		err = ctl.ChangePage(ctx, *params.Page)
	case params.Refresh:
		err = ctl.Refresh(ctx)
	}

	if err != nil && !apperrors.Is(err, listview.ErrSuperseded) {
		s.invalidateOnUnauthorized(sess, err)
		if apperrors.Is(err, listview.ErrPageSizeNotAllowed) {
			return ctl.Snapshot(), err
		}
		// Load failures are part of the snapshot (error message, empty
		// list); the screen still renders.
	}

	return ctl.Snapshot(), nil
}

// RequestDelete registers a pending delete and returns the confirmation
// prompt. No upstream call is made.
func (s *ResourceService) RequestDelete(sess *models.Session, resource, id string) (string, error) {
	ctl, err := s.controllerFor(sess, resource)
	if err != nil {
		return "", err
	}
	return ctl.RequestDelete(id), nil
}

// ConfirmDelete executes the pending delete for id and reloads the page.
func (s *ResourceService) ConfirmDelete(ctx context.Context, sess *models.Session, resource, id string) error {
	ctl, err := s.controllerFor(sess, resource)
	if err != nil {
		return err
	}
	// Re-register in case the confirm arrived on a fresh request.
	ctl.RequestDelete(id)
	if err := ctl.ConfirmDelete(ctx); err != nil && !apperrors.Is(err, listview.ErrSuperseded) {
		s.invalidateOnUnauthorized(sess, err)
		return err
	}
	return nil
}

// CancelDelete drops the pending delete for (sess, resource).
func (s *ResourceService) CancelDelete(sess *models.Session, resource string) error {
	ctl, err := s.controllerFor(sess, resource)
	if err != nil {
		return err
	}
	ctl.CancelDelete()
	return nil
}

// GetRecord fetches one record for a detail screen.
func (s *ResourceService) GetRecord(ctx context.Context, sess *models.Session, resource, id string) (models.Record, error) {
	res, ok := FindResource(resource, sess.Role)
	if !ok {
		return nil, apperrors.NotFoundError("resource")
	}
	record, err := s.api.Get(ctx, sess.Token, res.Path, res.MentorScoped, id)
	if err != nil {
		s.invalidateOnUnauthorized(sess, err)
		return nil, err
	}
	return record, nil
}

// CreateRecord creates a record, then reloads the list so the screen
// reflects server truth.
func (s *ResourceService) CreateRecord(ctx context.Context, sess *models.Session, resource string, payload models.Record) (models.Record, error) {
	res, ok := FindResource(resource, sess.Role)
	if !ok {
		return nil, apperrors.NotFoundError("resource")
	}
	record, err := s.api.Create(ctx, sess.Token, res.Path, res.MentorScoped, payload)
	if err != nil {
		s.invalidateOnUnauthorized(sess, err)
		return nil, err
	}
	s.reloadAfterMutation(ctx, sess, resource)
	return record, nil
}

// UpdateRecord updates a record, then reloads the list.
func (s *ResourceService) UpdateRecord(ctx context.Context, sess *models.Session, resource, id string, payload models.Record) (models.Record, error) {
	res, ok := FindResource(resource, sess.Role)
	if !ok {
		return nil, apperrors.NotFoundError("resource")
	}
	record, err := s.api.Update(ctx, sess.Token, res.Path, res.MentorScoped, id, payload)
	if err != nil {
		s.invalidateOnUnauthorized(sess, err)
		return nil, err
	}
	s.reloadAfterMutation(ctx, sess, resource)
	return record, nil
}

func (s *ResourceService) reloadAfterMutation(ctx context.Context, sess *models.Session, resource string) {
	ctl, err := s.controllerFor(sess, resource)
	if err != nil {
		return
	}
	if loadErr := ctl.Refresh(ctx); loadErr != nil && !apperrors.Is(loadErr, listview.ErrSuperseded) {
		logger.Warn("List reload after mutation failed",
			zap.String("resource", resource),
			zap.Error(loadErr))
	}
}

// controllerFor returns the session's controller for resource, creating
// it on first use.
func (s *ResourceService) controllerFor(sess *models.Session, resource string) (*listview.Controller[models.Record], error) {
	res, ok := FindResource(resource, sess.Role)
	if !ok {
		return nil, apperrors.NotFoundError("resource")
	}

	key := sess.ID + "/" + res.Name
	if cached, found := s.controllers.Get(key); found {
		if ctl, ok := cached.(*listview.Controller[models.Record]); ok {
			return ctl, nil
		}
	}

	token := sess.Token
	ctl := listview.New(listview.Config[models.Record]{
		Resource: res.Name,
		Fetch: func(ctx context.Context, page, limit int) (listview.Page[models.Record], error) {
			result, err := s.api.List(ctx, token, res.Path, res.MentorScoped, page, limit)
			if err != nil {
				s.invalidateOnUnauthorized(sess, err)
				return listview.Page[models.Record]{}, err
			}
			return listview.Page[models.Record]{
				Items:      result.Items,
				Total:      result.Total,
				TotalPages: result.TotalPages,
			}, nil
		},
		Delete: func(ctx context.Context, id string) error {
			if err := s.api.Delete(ctx, token, res.Path, res.MentorScoped, id); err != nil {
				s.invalidateOnUnauthorized(sess, err)
				return err
			}
			return nil
		},
		Matches: func(item models.Record, query string) bool {
			return item.Matches(query, res.SearchFields)
		},
		ID:               models.Record.ID,
		AllowedPageSizes: s.pagination.AllowedPageSizes,
		DefaultPageSize:  s.pagination.DefaultPageSize,
	})

	s.controllers.SetDefault(key, ctl)
	return ctl, nil
}

// invalidateOnUnauthorized is the central 401 handler: any upstream call
// rejected for authentication kills the session, so the next guarded
// navigation redirects to login instead of surfacing page errors forever.
func (s *ResourceService) invalidateOnUnauthorized(sess *models.Session, err error) {
	if apperrors.Is(err, apperrors.ErrUnauthorized) {
		s.sessions.Invalidate(sess.ID, "upstream_unauthorized")
	}
}
