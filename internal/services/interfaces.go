package services

import (
	"context"

	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/upstream"
)

// UpstreamAPI is the TunasKarier backend surface the services depend on.
// Satisfied by *upstream.Client; mocked in tests.
type UpstreamAPI interface {
	Login(ctx context.Context, email, password string) (*upstream.AuthResult, error)
	RegisterStudent(ctx context.Context, req *models.RegisterStudentRequest) error

	List(ctx context.Context, token, resourcePath string, mentorScoped bool, page, limit int) (*models.Page, error)
	Get(ctx context.Context, token, resourcePath string, mentorScoped bool, id string) (models.Record, error)
	Create(ctx context.Context, token, resourcePath string, mentorScoped bool, payload models.Record) (models.Record, error)
	Update(ctx context.Context, token, resourcePath string, mentorScoped bool, id string, payload models.Record) (models.Record, error)
	Delete(ctx context.Context, token, resourcePath string, mentorScoped bool, id string) error

	GetProfile(ctx context.Context, token string) (models.Record, error)
	UpdateProfile(ctx context.Context, token string, payload models.Record) (models.Record, error)
	UpdatePassword(ctx context.Context, token string, req *models.UpdatePasswordRequest) error
}
