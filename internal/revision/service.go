package revision

import (
	"context"
	"encoding/json"
	defError "errors"
	"fmt"
	"time"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
	"product-tour-builder/redis"

	"gorm.io/gorm"
)

type Service interface {
	Publish(ctx context.Context, tourID uint64, actorID uint64) (*PublishResult, error)
	Unpublish(ctx context.Context, tourID uint64) error
	Restore(ctx context.Context, tourID uint64, revisionNumber int) error
	ListRevisions(ctx context.Context, tourID uint64) ([]RevisionSummary, error)
	GetLiveSnapshot(ctx context.Context, tour *domain.Tour) (*Snapshot, error)
	Preview(ctx context.Context, tourID uint64) (*Snapshot, error)
}

// ContentProvider is the slice of the content store the publisher reads
type ContentProvider interface {
	ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error)
	ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error)
}

// TourProvider resolves tours and refreshes workspace list caches
type TourProvider interface {
	GetTour(ctx context.Context, id uint64) (*domain.Tour, error)
	InvalidateList(ctx context.Context, workspaceID uint64)
}

type DefaultService struct {
	repository    Repository
	content       ContentProvider
	tourProvider  TourProvider
	cache         *redis.Cache
	publicBaseURL string
}

func NewService(
	repository Repository,
	content ContentProvider,
	tourProvider TourProvider,
	cache *redis.Cache,
	publicBaseURL string,
) Service {
	return &DefaultService{
		repository:    repository,
		content:       content,
		tourProvider:  tourProvider,
		cache:         cache,
		publicBaseURL: publicBaseURL,
	}
}

type PublishResult struct {
	PublicURL      string `json:"public_url"`
	RevisionNumber int    `json:"revision_number"`
}

// Publish freezes the current draft into a new immutable revision and
// repoints the tour's live pointer at it. Republishing is the same
// path; it never touches an existing revision.
func (s *DefaultService) Publish(ctx context.Context, tourID uint64, actorID uint64) (*PublishResult, error) {
	tour, err := s.tourProvider.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	screens, err := s.content.ListScreens(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if len(screens) == 0 {
		return nil, errors.UnprocessableEntity("Can't publish a tour with no screens", nil)
	}

	steps, err := s.content.ListSteps(ctx, tourID)
	if err != nil {
		return nil, err
	}

	snapshot := BuildSnapshot(tour, screens, steps)
	content, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	rev, err := s.repository.PublishRevision(ctx, tourID, content, actorID)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, tour)

	return &PublishResult{
		PublicURL:      fmt.Sprintf("%s/d/%s", s.publicBaseURL, tour.PublicID),
		RevisionNumber: rev.RevisionNumber,
	}, nil
}

// Unpublish takes the tour off the public route. History is kept: the
// next publish creates revision max+1 from the draft state, never a
// resurrection of the old one.
func (s *DefaultService) Unpublish(ctx context.Context, tourID uint64) error {
	tour, err := s.tourProvider.GetTour(ctx, tourID)
	if err != nil {
		return err
	}

	if err := s.repository.Unpublish(ctx, tourID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Tour not found", err)
		}
		return err
	}

	s.invalidateCaches(ctx, tour)
	return nil
}

func (s *DefaultService) Restore(ctx context.Context, tourID uint64, revisionNumber int) error {
	tour, err := s.tourProvider.GetTour(ctx, tourID)
	if err != nil {
		return err
	}

	rev, err := s.repository.FindByNumber(ctx, tourID, revisionNumber)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Revision not found", err)
		}
		return err
	}

	if err := s.repository.Restore(ctx, tourID, rev.ID); err != nil {
		return err
	}

	s.invalidateCaches(ctx, tour)
	return nil
}

type RevisionSummary struct {
	ID             uint64    `json:"id"`
	RevisionNumber int       `json:"revision_number"`
	PublishedByID  uint64    `json:"published_by_id"`
	CreatedAt      time.Time `json:"created_at"`
	Live           bool      `json:"live"`
}

func (s *DefaultService) ListRevisions(ctx context.Context, tourID uint64) ([]RevisionSummary, error) {
	tour, err := s.tourProvider.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	revs, err := s.repository.ListByTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	result := make([]RevisionSummary, 0, len(revs))
	for _, rev := range revs {
		result = append(result, RevisionSummary{
			ID:             rev.ID,
			RevisionNumber: rev.RevisionNumber,
			PublishedByID:  rev.PublishedByID,
			CreatedAt:      rev.CreatedAt,
			Live:           tour.CurrentRevisionID != nil && *tour.CurrentRevisionID == rev.ID,
		})
	}
	return result, nil
}

// GetLiveSnapshot loads the frozen content the public routes render.
// Draft state is never served here.
func (s *DefaultService) GetLiveSnapshot(ctx context.Context, tour *domain.Tour) (*Snapshot, error) {
	if !tour.IsPublished() {
		return nil, errors.NotFound("Tour not found", nil)
	}

	cacheKey := snapshotCacheKey(tour.PublicID, *tour.CurrentRevisionID)

	var snapshot Snapshot
	found, _ := s.cache.Get(ctx, cacheKey, &snapshot)
	if found {
		return &snapshot, nil
	}

	rev, err := s.repository.FindByID(ctx, *tour.CurrentRevisionID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Tour not found", err)
		}
		return nil, err
	}

	if err := json.Unmarshal(rev.Content, &snapshot); err != nil {
		return nil, err
	}

	go s.cache.Set(context.Background(), cacheKey, snapshot, 24*time.Hour)

	return &snapshot, nil
}

// Preview builds a throwaway snapshot from the current draft so the
// editor can play the tour before publishing. Nothing is stored.
func (s *DefaultService) Preview(ctx context.Context, tourID uint64) (*Snapshot, error) {
	tour, err := s.tourProvider.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	screens, err := s.content.ListScreens(ctx, tourID)
	if err != nil {
		return nil, err
	}
	steps, err := s.content.ListSteps(ctx, tourID)
	if err != nil {
		return nil, err
	}

	snapshot := BuildSnapshot(tour, screens, steps)
	return &snapshot, nil
}

// invalidateCaches drops the stale snapshot and bumps the workspace
// list version, since publish state shows up in tour listings too.
func (s *DefaultService) invalidateCaches(ctx context.Context, tour *domain.Tour) {
	if tour.CurrentRevisionID != nil {
		s.cache.Delete(ctx, snapshotCacheKey(tour.PublicID, *tour.CurrentRevisionID))
	}
	s.tourProvider.InvalidateList(ctx, tour.WorkspaceID)
}

func snapshotCacheKey(publicID string, revisionID uint64) string {
	return fmt.Sprintf("snapshot:%s:rev:%d", publicID, revisionID)
}
