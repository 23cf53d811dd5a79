package playback

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
	"product-tour-builder/internal/revision"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

type MockTourResolver struct {
	mock.Mock
}

func (m *MockTourResolver) GetTourByPublicID(ctx context.Context, publicID string) (*domain.Tour, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

type MockSnapshots struct {
	mock.Mock
}

func (m *MockSnapshots) GetLiveSnapshot(ctx context.Context, tour *domain.Tour) (*revision.Snapshot, error) {
	args := m.Called(ctx, tour)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revision.Snapshot), args.Error(1)
}

func liveTour() *domain.Tour {
	revID := uint64(7)
	return &domain.Tour{
		ID:                1,
		PublicID:          "pub-abc",
		Status:            domain.TourStatusPublished,
		CurrentRevisionID: &revID,
		ShowBranding:      true,
	}
}

func liveSnapshot() *revision.Snapshot {
	return &revision.Snapshot{
		Screens: []revision.SnapshotScreen{
			{ID: 10, ImageURL: "https://cdn/s1.png", Hotspots: []revision.SnapshotHotspot{
				{ID: 100, Kind: domain.HotspotKindAction},
			}},
		},
		Settings: revision.SnapshotSettings{ShowBranding: true, Name: "Onboarding"},
	}
}

func setupPlayback(tours *MockTourResolver, snapshots *MockSnapshots) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	handler := NewHandler(tours, snapshots, &recordingSink{}, NewRegistry())
	router.GET("/d/:publicId", handler.View)
	router.GET("/embed/:publicId", handler.Embed)
	router.POST("/d/:publicId/sessions", handler.StartSession)
	router.POST("/d/:publicId/sessions/:sessionId/input", handler.Input)
	router.DELETE("/d/:publicId/sessions/:sessionId", handler.EndSession)
	return router
}

func TestView_ServesFrozenSnapshot(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	tours.On("GetTourByPublicID", mock.Anything, "pub-abc").Return(liveTour(), nil)
	snapshots.On("GetLiveSnapshot", mock.Anything, mock.Anything).Return(liveSnapshot(), nil)

	req := httptest.NewRequest("GET", "/d/pub-abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]any
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Onboarding", response["name"])
	assert.Equal(t, true, response["branding"])
}

func TestView_UnpublishedLooksMissing(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	draft := liveTour()
	draft.Status = domain.TourStatusDraft
	tours.On("GetTourByPublicID", mock.Anything, "pub-abc").Return(draft, nil)

	req := httptest.NewRequest("GET", "/d/pub-abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	snapshots.AssertNotCalled(t, "GetLiveSnapshot", mock.Anything, mock.Anything)
}

func TestView_UnknownPublicID(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	tours.On("GetTourByPublicID", mock.Anything, "nope").
		Return(nil, errors.NotFound("Tour not found", nil))

	req := httptest.NewRequest("GET", "/d/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestView_PasswordGate(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	password := "s3cret"
	gated := liveTour()
	gated.Password = &password
	tours.On("GetTourByPublicID", mock.Anything, "pub-abc").Return(gated, nil)
	snapshots.On("GetLiveSnapshot", mock.Anything, mock.Anything).Return(liveSnapshot(), nil)

	req := httptest.NewRequest("GET", "/d/pub-abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("GET", "/d/pub-abc", nil)
	req.Header.Set("X-Tour-Password", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("GET", "/d/pub-abc", nil)
	req.Header.Set("X-Tour-Password", "s3cret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEmbed_SetsNoindexAndBranding(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	tours.On("GetTourByPublicID", mock.Anything, "pub-abc").Return(liveTour(), nil)
	snapshots.On("GetLiveSnapshot", mock.Anything, mock.Anything).Return(liveSnapshot(), nil)

	req := httptest.NewRequest("GET", "/embed/pub-abc?hideBranding=true&autoplay=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "noindex", w.Header().Get("X-Robots-Tag"))

	var response map[string]any
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, false, response["branding"])
	assert.Equal(t, true, response["autoplay"])

	// absent params fall back to branding on, autoplay off
	req = httptest.NewRequest("GET", "/embed/pub-abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["branding"])
	assert.Equal(t, false, response["autoplay"])
}

func TestEmbed_AllowedDomains(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	restricted := liveTour()
	restricted.AllowedDomains = datatypes.JSON(`["example.com"]`)
	tours.On("GetTourByPublicID", mock.Anything, "pub-abc").Return(restricted, nil)
	snapshots.On("GetLiveSnapshot", mock.Anything, mock.Anything).Return(liveSnapshot(), nil)

	// no origin at all
	req := httptest.NewRequest("GET", "/embed/pub-abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// wrong host
	req = httptest.NewRequest("GET", "/embed/pub-abc", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// exact and subdomain matches pass
	req = httptest.NewRequest("GET", "/embed/pub-abc", nil)
	req.Header.Set("Origin", "https://example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/embed/pub-abc", nil)
	req.Header.Set("Origin", "https://docs.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	tours.On("GetTourByPublicID", mock.Anything, "pub-abc").Return(liveTour(), nil)
	snapshots.On("GetLiveSnapshot", mock.Anything, mock.Anything).Return(liveSnapshot(), nil)

	req := httptest.NewRequest("POST", "/d/pub-abc/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created sessionResponse
	json.Unmarshal(w.Body.Bytes(), &created)
	assert.NotEmpty(t, created.SessionID)
	assert.Equal(t, State{ScreenIndex: 0, HotspotIndex: 0}, created.State)

	// single hotspot: one advance completes the demo
	body, _ := json.Marshal(InputRequest{Input: InputNext})
	req = httptest.NewRequest("POST", "/d/pub-abc/sessions/"+created.SessionID+"/input", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var advanced sessionResponse
	json.Unmarshal(w.Body.Bytes(), &advanced)
	assert.True(t, advanced.Completed)

	req = httptest.NewRequest("DELETE", "/d/pub-abc/sessions/"+created.SessionID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// the session is gone
	req = httptest.NewRequest("POST", "/d/pub-abc/sessions/"+created.SessionID+"/input", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInput_UnknownSession(t *testing.T) {
	tours := new(MockTourResolver)
	snapshots := new(MockSnapshots)
	router := setupPlayback(tours, snapshots)

	body, _ := json.Marshal(InputRequest{Input: InputNext})
	req := httptest.NewRequest("POST", "/d/pub-abc/sessions/nope/input", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
