package revision

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
	"product-tour-builder/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) PublishRevision(ctx context.Context, tourID uint64, content []byte, publishedByID uint64) (*domain.Revision, error) {
	args := m.Called(ctx, tourID, content, publishedByID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *MockRepository) Unpublish(ctx context.Context, tourID uint64) error {
	args := m.Called(ctx, tourID)
	return args.Error(0)
}

func (m *MockRepository) Restore(ctx context.Context, tourID uint64, revisionID uint64) error {
	args := m.Called(ctx, tourID, revisionID)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Revision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *MockRepository) FindByNumber(ctx context.Context, tourID uint64, number int) (*domain.Revision, error) {
	args := m.Called(ctx, tourID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *MockRepository) ListByTour(ctx context.Context, tourID uint64) ([]domain.Revision, error) {
	args := m.Called(ctx, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Revision), args.Error(1)
}

type MockContent struct {
	mock.Mock
}

func (m *MockContent) ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error) {
	args := m.Called(ctx, tourID)
	return args.Get(0).([]domain.Screen), args.Error(1)
}

func (m *MockContent) ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error) {
	args := m.Called(ctx, tourID)
	return args.Get(0).([]domain.Step), args.Error(1)
}

type MockTours struct {
	mock.Mock
}

func (m *MockTours) GetTour(ctx context.Context, id uint64) (*domain.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockTours) InvalidateList(ctx context.Context, workspaceID uint64) {
	m.Called(ctx, workspaceID)
}

func newTestService() (Service, *MockRepository, *MockContent, *MockTours) {
	repo := new(MockRepository)
	content := new(MockContent)
	tours := new(MockTours)
	service := NewService(repo, content, tours, redis.NewCache(nil), "https://tours.example.com")
	return service, repo, content, tours
}

func draftTour() *domain.Tour {
	return &domain.Tour{
		ID:           1,
		WorkspaceID:  2,
		PublicID:     "pub-abc",
		Name:         "Onboarding",
		Status:       domain.TourStatusDraft,
		ShowBranding: true,
	}
}

func publishedTour(revisionID uint64) *domain.Tour {
	tour := draftTour()
	tour.Status = domain.TourStatusPublished
	tour.CurrentRevisionID = &revisionID
	return tour
}

func TestPublish_Success(t *testing.T) {
	service, repo, content, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(draftTour(), nil)
	content.On("ListScreens", mock.Anything, uint64(1)).Return([]domain.Screen{
		{ID: 10, TourID: 1, ImageURL: "https://cdn/s1.png", Hotspots: []domain.Hotspot{
			{ID: 100, ScreenID: 10, Kind: domain.HotspotKindAction, Tooltip: "hi"},
		}},
	}, nil)
	content.On("ListSteps", mock.Anything, uint64(1)).Return([]domain.Step{}, nil)

	var stored []byte
	repo.On("PublishRevision", mock.Anything, uint64(1), mock.Anything, uint64(42)).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).([]byte)
		}).
		Return(&domain.Revision{ID: 7, TourID: 1, RevisionNumber: 1}, nil)
	tours.On("InvalidateList", mock.Anything, uint64(2)).Return()

	result, err := service.Publish(context.Background(), 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.RevisionNumber)
	assert.Equal(t, "https://tours.example.com/d/pub-abc", result.PublicURL)

	// the frozen shape uses the public snapshot keys
	var raw map[string]any
	assert.NoError(t, json.Unmarshal(stored, &raw))
	screens := raw["screens"].([]any)
	screen := screens[0].(map[string]any)
	assert.Equal(t, "https://cdn/s1.png", screen["imageUrl"])
	hotspots := screen["hotspots"].([]any)
	assert.Contains(t, hotspots[0].(map[string]any), "primaryCta")

	// workspace tour listings show publish state, so they get refreshed
	tours.AssertCalled(t, "InvalidateList", mock.Anything, uint64(2))
	repo.AssertExpectations(t)
}

func TestPublish_FailsWithNoScreens(t *testing.T) {
	service, repo, content, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(draftTour(), nil)
	content.On("ListScreens", mock.Anything, uint64(1)).Return([]domain.Screen{}, nil)

	_, err := service.Publish(context.Background(), 1, 42)

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	repo.AssertNotCalled(t, "PublishRevision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnpublish(t *testing.T) {
	service, repo, _, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(publishedTour(7), nil)
	repo.On("Unpublish", mock.Anything, uint64(1)).Return(nil)
	tours.On("InvalidateList", mock.Anything, uint64(2)).Return()

	assert.NoError(t, service.Unpublish(context.Background(), 1))
	tours.AssertCalled(t, "InvalidateList", mock.Anything, uint64(2))
	repo.AssertExpectations(t)
}

func TestUnpublish_MissingTour(t *testing.T) {
	service, repo, _, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(publishedTour(7), nil)
	repo.On("Unpublish", mock.Anything, uint64(1)).Return(gorm.ErrRecordNotFound)

	err := service.Unpublish(context.Background(), 1)

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestRestore(t *testing.T) {
	service, repo, _, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(publishedTour(9), nil)
	repo.On("FindByNumber", mock.Anything, uint64(1), 2).
		Return(&domain.Revision{ID: 7, TourID: 1, RevisionNumber: 2}, nil)
	repo.On("Restore", mock.Anything, uint64(1), uint64(7)).Return(nil)
	tours.On("InvalidateList", mock.Anything, uint64(2)).Return()

	assert.NoError(t, service.Restore(context.Background(), 1, 2))
	tours.AssertCalled(t, "InvalidateList", mock.Anything, uint64(2))
	repo.AssertExpectations(t)
}

func TestRestore_UnknownRevision(t *testing.T) {
	service, repo, _, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(publishedTour(9), nil)
	repo.On("FindByNumber", mock.Anything, uint64(1), 5).
		Return(nil, gorm.ErrRecordNotFound)

	err := service.Restore(context.Background(), 1, 5)

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestListRevisions_MarksLive(t *testing.T) {
	service, repo, _, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(publishedTour(8), nil)
	repo.On("ListByTour", mock.Anything, uint64(1)).Return([]domain.Revision{
		{ID: 9, TourID: 1, RevisionNumber: 3, CreatedAt: time.Now()},
		{ID: 8, TourID: 1, RevisionNumber: 2, CreatedAt: time.Now()},
		{ID: 7, TourID: 1, RevisionNumber: 1, CreatedAt: time.Now()},
	}, nil)

	summaries, err := service.ListRevisions(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, summaries, 3)
	assert.False(t, summaries[0].Live)
	assert.True(t, summaries[1].Live)
	assert.False(t, summaries[2].Live)
}

func TestPreview_BuildsFromDraftWithoutStoring(t *testing.T) {
	service, repo, content, tours := newTestService()

	tours.On("GetTour", mock.Anything, uint64(1)).Return(draftTour(), nil)
	content.On("ListScreens", mock.Anything, uint64(1)).Return([]domain.Screen{
		{ID: 10, TourID: 1, ImageURL: "https://cdn/s1.png"},
	}, nil)
	content.On("ListSteps", mock.Anything, uint64(1)).Return([]domain.Step{}, nil)

	snapshot, err := service.Preview(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, snapshot.Screens, 1)
	repo.AssertNotCalled(t, "PublishRevision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetLiveSnapshot(t *testing.T) {
	service, repo, _, _ := newTestService()

	content, _ := json.Marshal(Snapshot{
		Screens:  []SnapshotScreen{{ID: 10, ImageURL: "https://cdn/s1.png"}},
		Settings: SnapshotSettings{ShowBranding: true, Name: "Onboarding"},
	})
	repo.On("FindByID", mock.Anything, uint64(7)).
		Return(&domain.Revision{ID: 7, TourID: 1, Content: datatypes.JSON(content)}, nil)

	snapshot, err := service.GetLiveSnapshot(context.Background(), publishedTour(7))

	assert.NoError(t, err)
	assert.Len(t, snapshot.Screens, 1)
	assert.Equal(t, "Onboarding", snapshot.Settings.Name)
}

func TestGetLiveSnapshot_UnpublishedIsNotFound(t *testing.T) {
	service, repo, _, _ := newTestService()

	_, err := service.GetLiveSnapshot(context.Background(), draftTour())

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
