package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/upstream"
)

// MockUpstreamAPI is a mock implementation of services.UpstreamAPI
type MockUpstreamAPI struct {
	mock.Mock
}

func (m *MockUpstreamAPI) Login(ctx context.Context, email, password string) (*upstream.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.AuthResult), args.Error(1)
}

func (m *MockUpstreamAPI) RegisterStudent(ctx context.Context, req *models.RegisterStudentRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockUpstreamAPI) List(ctx context.Context, token, resourcePath string, mentorScoped bool, page, limit int) (*models.Page, error) {
	args := m.Called(ctx, token, resourcePath, mentorScoped, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockUpstreamAPI) Get(ctx context.Context, token, resourcePath string, mentorScoped bool, id string) (models.Record, error) {
	args := m.Called(ctx, token, resourcePath, mentorScoped, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockUpstreamAPI) Create(ctx context.Context, token, resourcePath string, mentorScoped bool, payload models.Record) (models.Record, error) {
	args := m.Called(ctx, token, resourcePath, mentorScoped, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockUpstreamAPI) Update(ctx context.Context, token, resourcePath string, mentorScoped bool, id string, payload models.Record) (models.Record, error) {
	args := m.Called(ctx, token, resourcePath, mentorScoped, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockUpstreamAPI) Delete(ctx context.Context, token, resourcePath string, mentorScoped bool, id string) error {
	args := m.Called(ctx, token, resourcePath, mentorScoped, id)
	return args.Error(0)
}

func (m *MockUpstreamAPI) GetProfile(ctx context.Context, token string) (models.Record, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockUpstreamAPI) UpdateProfile(ctx context.Context, token string, payload models.Record) (models.Record, error) {
	args := m.Called(ctx, token, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *MockUpstreamAPI) UpdatePassword(ctx context.Context, token string, req *models.UpdatePasswordRequest) error {
	args := m.Called(ctx, token, req)
	return args.Error(0)
}
