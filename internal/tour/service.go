package tour

import (
	"context"
	defError "errors"
	"fmt"
	"log"
	"slices"
	"time"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
	"product-tour-builder/redis"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreateTour(ctx context.Context, workspaceID, userID uint64, tour *domain.Tour) error
	GetTour(ctx context.Context, id uint64) (*domain.Tour, error)
	GetTourByPublicID(ctx context.Context, publicID string) (*domain.Tour, error)
	ListTours(ctx context.Context, workspaceID uint64, page, pageSize int) (*PaginatedTours, error)
	UpdateTour(ctx context.Context, id uint64, fields map[string]any) (*domain.Tour, error)
	DeleteTour(ctx context.Context, id uint64) error

	SetThumbnail(ctx context.Context, tourID uint64, imageURL string) error
	MarkEdited(ctx context.Context, tourID uint64)
	InvalidateList(ctx context.Context, workspaceID uint64)
}

type DefaultService struct {
	repository Repository
	cache      *redis.Cache
}

func NewService(repository Repository, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
	}
}

// Settings the editor may patch on a tour. Ordering, status and the
// revision pointer are owned by the content store and the publisher.
var updatableFields = []string{
	"name", "description", "show_branding", "password", "allowed_domains",
}

func (s *DefaultService) CreateTour(ctx context.Context, workspaceID, userID uint64, tour *domain.Tour) error {
	tour.WorkspaceID = workspaceID
	tour.CreatedByID = userID
	tour.PublicID = uuid.NewString()

	err := s.repository.Create(ctx, tour)
	if err == nil {
		// increase cache key, so any new fetch will get new version
		versionKey := fmt.Sprintf("ws:%d:tours:version", workspaceID)
		s.cache.IncrementVersion(ctx, versionKey)
	}
	return err
}

func (s *DefaultService) GetTour(ctx context.Context, id uint64) (*domain.Tour, error) {
	tour, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Tour not found", err)
		}
		return nil, err
	}
	return tour, nil
}

func (s *DefaultService) GetTourByPublicID(ctx context.Context, publicID string) (*domain.Tour, error) {
	tour, err := s.repository.FindByPublicID(ctx, publicID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Tour not found", err)
		}
		return nil, err
	}
	return tour, nil
}

type PaginatedTours struct {
	Data []domain.Tour `json:"data"`
	Meta ToursMeta     `json:"meta"`
}

func (s *DefaultService) ListTours(ctx context.Context, workspaceID uint64, page, pageSize int) (*PaginatedTours, error) {
	// Get the current data version for this workspace's tours
	versionKey := fmt.Sprintf("ws:%d:tours:version", workspaceID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("tours:ws:%d:v:%d:p:%d:ps:%d", workspaceID, v, page, pageSize)

	var result PaginatedTours
	// get data from cache
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	tours, meta, err := s.repository.ListByWorkspace(ctx, workspaceID, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedTours{Data: tours, Meta: meta}
	// set value to cache
	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return &result, nil
}

func (s *DefaultService) UpdateTour(ctx context.Context, id uint64, fields map[string]any) (*domain.Tour, error) {
	patch := make(map[string]any, len(fields))
	for key, value := range fields {
		if !slices.Contains(updatableFields, key) {
			return nil, errors.BadRequest("Unknown field '"+key+"'", nil)
		}
		patch[key] = value
	}

	if len(patch) > 0 {
		if err := s.repository.Update(ctx, id, patch); err != nil {
			if defError.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.NotFound("Tour not found", err)
			}
			return nil, err
		}
	}

	tour, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	versionKey := fmt.Sprintf("ws:%d:tours:version", tour.WorkspaceID)
	s.cache.IncrementVersion(ctx, versionKey)

	return tour, nil
}

func (s *DefaultService) DeleteTour(ctx context.Context, id uint64) error {
	tour, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Tour not found", err)
		}
		return err
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}

	versionKey := fmt.Sprintf("ws:%d:tours:version", tour.WorkspaceID)
	s.cache.IncrementVersion(ctx, versionKey)

	return nil
}

func (s *DefaultService) SetThumbnail(ctx context.Context, tourID uint64, imageURL string) error {
	return s.repository.Update(ctx, tourID, map[string]any{"thumbnail_url": imageURL})
}

// MarkEdited refreshes updated_at so "has unpublished changes" can be
// derived from updated_at > published_at by anyone reading the row.
// An edit marker is never worth failing a content mutation over, so a
// failure only shows up in the log.
func (s *DefaultService) MarkEdited(ctx context.Context, tourID uint64) {
	if err := s.repository.Update(ctx, tourID, map[string]any{"updated_at": time.Now().UTC()}); err != nil {
		log.Printf("[TOUR] edit marker for tour %d failed: %v", tourID, err)
	}
}

// InvalidateList bumps the workspace's list-cache version so the next
// listing reflects changes made outside this service, like a publish
// flipping the status column.
func (s *DefaultService) InvalidateList(ctx context.Context, workspaceID uint64) {
	versionKey := fmt.Sprintf("ws:%d:tours:version", workspaceID)
	s.cache.IncrementVersion(ctx, versionKey)
}
