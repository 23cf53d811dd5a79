package tour

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"product-tour-builder/internal/domain"
	"product-tour-builder/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, tour *domain.Tour) error {
	args := m.Called(ctx, tour)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.Tour, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockRepository) ListByWorkspace(ctx context.Context, workspaceID uint64, page, pageSize int) ([]domain.Tour, ToursMeta, error) {
	args := m.Called(ctx, workspaceID, page, pageSize)
	return args.Get(0).([]domain.Tour), args.Get(1).(ToursMeta), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, id uint64, patch map[string]any) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestMarkEdited_LogsFailureWithoutPropagating(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, redis.NewCache(nil))

	repo.On("Update", mock.Anything, uint64(1), mock.Anything).Return(gorm.ErrInvalidDB)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	// no error return to check; the marker is best-effort
	service.MarkEdited(context.Background(), 1)

	assert.Contains(t, buf.String(), "[TOUR] edit marker for tour 1 failed")
	repo.AssertExpectations(t)
}

func TestMarkEdited_TouchesUpdatedAt(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, redis.NewCache(nil))

	var patch map[string]any
	repo.On("Update", mock.Anything, uint64(1), mock.Anything).
		Run(func(args mock.Arguments) {
			patch = args.Get(2).(map[string]any)
		}).
		Return(nil)

	service.MarkEdited(context.Background(), 1)

	assert.Contains(t, patch, "updated_at")
}
