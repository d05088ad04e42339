package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tunaskarier/portal-api/config"
	"github.com/tunaskarier/portal-api/internal/listview"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/services"
	"github.com/tunaskarier/portal-api/internal/session"
	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
	"github.com/tunaskarier/portal-api/pkg/logger"
)

func init() {
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "development"})
}

func testPagination() config.PaginationConfig {
	return config.PaginationConfig{
		AllowedPageSizes: []int{5, 10, 25, 50},
		DefaultPageSize:  10,
	}
}

func adminSession(t *testing.T, store *session.Store) *models.Session {
	t.Helper()
	sess, err := store.Create("upstream-token", models.RoleAdmin, "admin-1", "")
	require.NoError(t, err)
	return sess
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func studentPage(ids ...string) *models.Page {
	items := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		items = append(items, models.Record{"id": id, "name": "Student " + id})
	}
	return &models.Page{
		Items:      items,
		Total:      len(ids),
		TotalPages: 1,
		Page:       1,
		Limit:      10,
	}
}

func TestResourceServiceViewLoadsOnFirstAccess(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1", "2", "3"), nil).Once()

	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{})

	require.NoError(t, err)
	assert.Equal(t, listview.StateLoaded, snap.State)
	assert.Len(t, snap.Items, 3)
	assert.Equal(t, 3, snap.Total)
	mockAPI.AssertExpectations(t)
}

func TestResourceServiceViewDeepLinkedPageLoads(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	// First request ever for this screen lands directly on page 2.
	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 2, 10).
		Return(&models.Page{
			Items:      []models.Record{{"id": "11", "name": "Student 11"}},
			Total:      11,
			TotalPages: 2,
		}, nil).Once()

	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{Page: intPtr(2)})

	require.NoError(t, err)
	assert.Equal(t, listview.StateLoaded, snap.State)
	assert.Equal(t, 2, snap.Page)
	assert.Len(t, snap.Items, 1)
	mockAPI.AssertExpectations(t)
}

func TestResourceServiceViewReusesControllerState(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1", "2"), nil).Once()

	_, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)

	// Second view with no changed parameters serves the cached state
	// without another upstream call.
	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)
	assert.Equal(t, listview.StateLoaded, snap.State)
	assert.Len(t, snap.Items, 2)
	mockAPI.AssertNumberOfCalls(t, "List", 1)
}

func TestResourceServiceViewSearchIsPageLocal(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	page := &models.Page{
		Items: []models.Record{
			{"id": "1", "name": "Budi Santoso"},
			{"id": "2", "name": "Siti Rahma"},
		},
		Total:      2,
		TotalPages: 1,
	}
	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(page, nil).Once()

	_, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)

	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{Query: strPtr("siti")})
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "2", snap.Items[0].ID())
	// Filtering never refetches.
	mockAPI.AssertNumberOfCalls(t, "List", 1)
}

func TestResourceServiceViewPageSizeChange(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1", "2"), nil).Once()
	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 25).
		Return(studentPage("1", "2"), nil).Once()

	_, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)

	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{Limit: intPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, 25, snap.PageSize)
	assert.Equal(t, 1, snap.Page)
	mockAPI.AssertExpectations(t)
}

func TestResourceServiceViewRejectsUnlistedPageSize(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1"), nil).Once()

	_, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)

	_, err = svc.View(context.Background(), sess, "students", services.ViewParams{Limit: intPtr(7)})
	assert.ErrorIs(t, err, listview.ErrPageSizeNotAllowed)
	mockAPI.AssertNumberOfCalls(t, "List", 1)
}

func TestResourceServiceViewUnknownResource(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	_, err := svc.View(context.Background(), sess, "invoices", services.ViewParams{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResourceServiceViewRoleVisibility(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())

	sess, err := store.Create("upstream-token", models.RoleCompany, "company-1", "")
	require.NoError(t, err)

	// Companies do not see the admins resource.
	_, err = svc.View(context.Background(), sess, "admins", services.ViewParams{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResourceServiceCentral401InvalidatesSession(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(nil, apperrors.ErrUnauthorized).Once()

	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)
	assert.Equal(t, listview.StateFailed, snap.State)
	assert.Nil(t, store.Get(sess.ID), "session should be invalidated after upstream 401")
}

func TestResourceServiceDeleteFlow(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1", "2"), nil).Twice()
	mockAPI.On("Delete", mock.Anything, "upstream-token", "/students", false, "2").
		Return(nil).Once()

	_, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)

	prompt, err := svc.RequestDelete(sess, "students", "2")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Yakin ingin menghapus data ini?")
	mockAPI.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	err = svc.ConfirmDelete(context.Background(), sess, "students", "2")
	require.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

func TestResourceServiceCancelDelete(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1"), nil).Once()

	_, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)

	_, err = svc.RequestDelete(sess, "students", "1")
	require.NoError(t, err)
	require.NoError(t, svc.CancelDelete(sess, "students"))

	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)
	assert.Empty(t, snap.PendingDelete)
	mockAPI.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResourceServiceCreateReloadsList(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1"), nil).Once()
	payload := models.Record{"name": "Baru"}
	created := models.Record{"id": "2", "name": "Baru"}
	mockAPI.On("Create", mock.Anything, "upstream-token", "/students", false, payload).
		Return(created, nil).Once()
	mockAPI.On("List", mock.Anything, "upstream-token", "/students", false, 1, 10).
		Return(studentPage("1", "2"), nil).Once()

	_, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)

	record, err := svc.CreateRecord(context.Background(), sess, "students", payload)
	require.NoError(t, err)
	assert.Equal(t, "2", record.ID())

	snap, err := svc.View(context.Background(), sess, "students", services.ViewParams{})
	require.NoError(t, err)
	assert.Len(t, snap.Items, 2)
	mockAPI.AssertExpectations(t)
}

func TestResourceServiceGetRecord(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("Get", mock.Anything, "upstream-token", "/students", false, "5").
		Return(models.Record{"id": "5", "name": "Dewi"}, nil).Once()

	record, err := svc.GetRecord(context.Background(), sess, "students", "5")
	require.NoError(t, err)
	assert.Equal(t, "5", record.ID())
	mockAPI.AssertExpectations(t)
}

func TestResourceServiceMentorScopedList(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	store := session.NewStore(1)
	svc := services.NewResourceService(mockAPI, store, testPagination())
	sess := adminSession(t, store)

	mockAPI.On("List", mock.Anything, "upstream-token", "/mentors", true, 1, 10).
		Return(studentPage("1"), nil).Once()

	snap, err := svc.View(context.Background(), sess, "mentors", services.ViewParams{})
	require.NoError(t, err)
	assert.Equal(t, listview.StateLoaded, snap.State)
	mockAPI.AssertExpectations(t)
}
