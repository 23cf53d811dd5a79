package tour

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
	"product-tour-builder/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateTour(ctx context.Context, workspaceID, userID uint64, tour *domain.Tour) error {
	args := m.Called(ctx, workspaceID, userID, tour)
	return args.Error(0)
}

func (m *MockService) GetTour(ctx context.Context, id uint64) (*domain.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockService) GetTourByPublicID(ctx context.Context, publicID string) (*domain.Tour, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockService) ListTours(ctx context.Context, workspaceID uint64, page, pageSize int) (*PaginatedTours, error) {
	args := m.Called(ctx, workspaceID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaginatedTours), args.Error(1)
}

func (m *MockService) UpdateTour(ctx context.Context, id uint64, fields map[string]any) (*domain.Tour, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockService) DeleteTour(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) SetThumbnail(ctx context.Context, tourID uint64, imageURL string) error {
	args := m.Called(ctx, tourID, imageURL)
	return args.Error(0)
}

func (m *MockService) MarkEdited(ctx context.Context, tourID uint64) {
	m.Called(ctx, tourID)
}

func (m *MockService) InvalidateList(ctx context.Context, workspaceID uint64) {
	m.Called(ctx, workspaceID)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	return router
}

func withIdentity(handlerFunc gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint64(1))
		c.Set("workspace_id", uint64(2))
		handlerFunc(c)
	}
}

// TestCreateTour_Success tests successful tour creation
func TestCreateTour_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("CreateTour", mock.Anything, uint64(2), uint64(1), mock.MatchedBy(func(tour *domain.Tour) bool {
		return tour.Name == "Onboarding" && tour.ShowBranding
	})).Return(nil).Run(func(args mock.Arguments) {
		tour := args.Get(3).(*domain.Tour)
		tour.ID = 1
		tour.PublicID = "pub-abc"
	})

	router.POST("/tours", withIdentity(handler.Create))

	payload := CreateTourRequest{Name: "Onboarding"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/tours", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.Tour
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "pub-abc", response.PublicID)
	mockService.AssertExpectations(t)
}

// TestCreateTour_InvalidInput tests tour creation with a missing name
func TestCreateTour_InvalidInput(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	router.POST("/tours", withIdentity(handler.Create))

	body, _ := json.Marshal(struct{}{})
	req := httptest.NewRequest("POST", "/tours", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// 422 for validation errors (missing name)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// TestListTours_WithPagination tests workspace listing with pagination
func TestListTours_WithPagination(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	result := &PaginatedTours{
		Data: []domain.Tour{{ID: 1, Name: "Tour 1"}},
		Meta: ToursMeta{CurrentPage: 2, TotalPage: 3, Total: 25, PerPage: 15},
	}
	mockService.On("ListTours", mock.Anything, uint64(2), 2, 15).Return(result, nil)

	router.GET("/tours", withIdentity(handler.List))

	req := httptest.NewRequest("GET", "/tours?page=2&per_page=15", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

// TestShowTour_Success tests retrieving a single tour
func TestShowTour_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("GetTour", mock.Anything, uint64(1)).
		Return(&domain.Tour{ID: 1, Name: "Onboarding"}, nil)

	router.GET("/tours/:id", withIdentity(handler.Show))

	req := httptest.NewRequest("GET", "/tours/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

// TestShowTour_InvalidID tests that a non-numeric id reads as missing
func TestShowTour_InvalidID(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	router.GET("/tours/:id", withIdentity(handler.Show))

	req := httptest.NewRequest("GET", "/tours/invalid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestUpdateTour_Success tests patching tour settings
func TestUpdateTour_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	fields := map[string]any{"name": "Renamed", "show_branding": false}
	mockService.On("UpdateTour", mock.Anything, uint64(1), fields).
		Return(&domain.Tour{ID: 1, Name: "Renamed"}, nil)

	router.PATCH("/tours/:id", withIdentity(handler.Update))

	body, _ := json.Marshal(fields)
	req := httptest.NewRequest("PATCH", "/tours/1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

// TestUpdateTour_UnknownField tests the settings allow-list
func TestUpdateTour_UnknownField(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	fields := map[string]any{"status": "published"}
	mockService.On("UpdateTour", mock.Anything, uint64(1), fields).
		Return(nil, errors.BadRequest("Unknown field 'status'", nil))

	router.PATCH("/tours/:id", withIdentity(handler.Update))

	body, _ := json.Marshal(fields)
	req := httptest.NewRequest("PATCH", "/tours/1", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestDeleteTour_Success tests tour deletion
func TestDeleteTour_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("DeleteTour", mock.Anything, uint64(1)).Return(nil)

	router.DELETE("/tours/:id", withIdentity(handler.Delete))

	req := httptest.NewRequest("DELETE", "/tours/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

// TestDeleteTour_NotFound tests deleting a missing tour
func TestDeleteTour_NotFound(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("DeleteTour", mock.Anything, uint64(9)).
		Return(errors.NotFound("Tour not found", nil))

	router.DELETE("/tours/:id", withIdentity(handler.Delete))

	req := httptest.NewRequest("DELETE", "/tours/9", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
