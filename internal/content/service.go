package content

import (
	"context"
	defError "errors"
	"fmt"
	"log"
	"slices"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"

	"gorm.io/gorm"
)

type Service interface {
	CreateScreen(ctx context.Context, screen *domain.Screen) error
	GetScreen(ctx context.Context, id uint64) (*domain.Screen, error)
	UpdateScreen(ctx context.Context, id uint64, fields map[string]any) error
	ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error)
	DeleteScreen(ctx context.Context, id uint64) error
	ReorderScreens(ctx context.Context, tourID uint64, orderedIDs []uint64) error

	CreateHotspot(ctx context.Context, hotspot *domain.Hotspot) error
	GetHotspot(ctx context.Context, id uint64) (*domain.Hotspot, error)
	UpdateHotspot(ctx context.Context, id uint64, fields map[string]any) error
	DeleteHotspot(ctx context.Context, id uint64) error
	ReorderHotspots(ctx context.Context, screenID uint64, orderedIDs []uint64) error

	CreateStep(ctx context.Context, step *domain.Step) error
	UpdateStep(ctx context.Context, id uint64, fields map[string]any) error
	DeleteStep(ctx context.Context, id uint64) error
	ReorderSteps(ctx context.Context, tourID uint64, orderedIDs []uint64) error
	ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error)
}

// TourProvider is the slice of the tour service the content store needs
type TourProvider interface {
	SetThumbnail(ctx context.Context, tourID uint64, imageURL string) error
	MarkEdited(ctx context.Context, tourID uint64)
}

type DefaultService struct {
	repository   Repository
	tourProvider TourProvider
}

func NewService(repository Repository, tourProvider TourProvider) Service {
	return &DefaultService{
		repository:   repository,
		tourProvider: tourProvider,
	}
}

func (s *DefaultService) CreateScreen(ctx context.Context, screen *domain.Screen) error {
	if screen.ImageURL == "" {
		return errors.BadRequest("Screen image is required", nil)
	}

	first, err := s.repository.CreateScreen(ctx, screen)
	if err != nil {
		return err
	}

	// The first screen of a tour seeds its thumbnail.
	if first {
		if err := s.tourProvider.SetThumbnail(ctx, screen.TourID, screen.ImageURL); err != nil {
			log.Printf("[CONTENT] failed to seed thumbnail for tour %d: %v", screen.TourID, err)
		}
	}

	s.tourProvider.MarkEdited(ctx, screen.TourID)
	return nil
}

func (s *DefaultService) GetScreen(ctx context.Context, id uint64) (*domain.Screen, error) {
	screen, err := s.repository.FindScreen(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Screen not found", err)
		}
		return nil, err
	}
	return screen, nil
}

func (s *DefaultService) UpdateScreen(ctx context.Context, id uint64, fields map[string]any) error {
	patch, err := buildPatch(fields, screenFields)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	if err := s.repository.UpdateScreen(ctx, id, patch); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Screen not found", err)
		}
		return err
	}
	return nil
}

func (s *DefaultService) ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error) {
	return s.repository.ListScreens(ctx, tourID)
}

func (s *DefaultService) DeleteScreen(ctx context.Context, id uint64) error {
	screen, err := s.repository.FindScreen(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Screen not found", err)
		}
		return err
	}

	if err := s.repository.DeleteScreen(ctx, id); err != nil {
		return err
	}

	s.tourProvider.MarkEdited(ctx, screen.TourID)
	return nil
}

// ReorderScreens requires the complete ordered id set of the tour;
// a partial list is a caller error.
func (s *DefaultService) ReorderScreens(ctx context.Context, tourID uint64, orderedIDs []uint64) error {
	existing, err := s.repository.ScreenIDs(ctx, tourID)
	if err != nil {
		return err
	}
	if err := requireCompleteSet(orderedIDs, existing); err != nil {
		return errors.BadRequest("Reorder must include every screen of the tour exactly once", err)
	}

	if err := s.repository.ReorderScreens(ctx, tourID, orderedIDs); err != nil {
		return err
	}

	s.tourProvider.MarkEdited(ctx, tourID)
	return nil
}

func (s *DefaultService) CreateHotspot(ctx context.Context, hotspot *domain.Hotspot) error {
	if hotspot.Kind != "" && hotspot.Kind != domain.HotspotKindIntro &&
		hotspot.Kind != domain.HotspotKindClosing && hotspot.Kind != domain.HotspotKindAction {
		return errors.BadRequest("Unknown hotspot kind", nil)
	}

	screen, err := s.repository.FindScreen(ctx, hotspot.ScreenID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Screen not found", err)
		}
		return err
	}

	hotspot.ApplyDefaults()
	if err := s.repository.CreateHotspot(ctx, hotspot); err != nil {
		return err
	}

	s.tourProvider.MarkEdited(ctx, screen.TourID)
	return nil
}

func (s *DefaultService) GetHotspot(ctx context.Context, id uint64) (*domain.Hotspot, error) {
	hotspot, err := s.repository.FindHotspot(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Hotspot not found", err)
		}
		return nil, err
	}
	return hotspot, nil
}

func (s *DefaultService) UpdateHotspot(ctx context.Context, id uint64, fields map[string]any) error {
	patch, err := buildPatch(fields, hotspotFields)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	if err := s.repository.UpdateHotspot(ctx, id, patch); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Hotspot not found", err)
		}
		return err
	}
	return nil
}

// DeleteHotspot succeeds when the hotspot is already gone. The editor
// fires deletes optimistically and may send the same one twice.
func (s *DefaultService) DeleteHotspot(ctx context.Context, id uint64) error {
	return s.repository.DeleteHotspot(ctx, id)
}

func (s *DefaultService) ReorderHotspots(ctx context.Context, screenID uint64, orderedIDs []uint64) error {
	existing, err := s.repository.HotspotIDs(ctx, screenID)
	if err != nil {
		return err
	}
	if err := requireCompleteSet(orderedIDs, existing); err != nil {
		return errors.BadRequest("Reorder must include every hotspot of the screen exactly once", err)
	}

	return s.repository.ReorderHotspots(ctx, screenID, orderedIDs)
}

func (s *DefaultService) CreateStep(ctx context.Context, step *domain.Step) error {
	if _, err := s.repository.FindScreen(ctx, step.ScreenID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Screen not found", err)
		}
		return err
	}

	return s.repository.CreateStep(ctx, step)
}

func (s *DefaultService) UpdateStep(ctx context.Context, id uint64, fields map[string]any) error {
	patch, err := buildPatch(fields, stepFields)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	if err := s.repository.UpdateStep(ctx, id, patch); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Step not found", err)
		}
		return err
	}
	return nil
}

func (s *DefaultService) DeleteStep(ctx context.Context, id uint64) error {
	if err := s.repository.DeleteStep(ctx, id); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Step not found", err)
		}
		return err
	}
	return nil
}

func (s *DefaultService) ReorderSteps(ctx context.Context, tourID uint64, orderedIDs []uint64) error {
	existing, err := s.repository.StepIDs(ctx, tourID)
	if err != nil {
		return err
	}
	if err := requireCompleteSet(orderedIDs, existing); err != nil {
		return errors.BadRequest("Reorder must include every step of the tour exactly once", err)
	}

	return s.repository.ReorderSteps(ctx, tourID, orderedIDs)
}

func (s *DefaultService) ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error) {
	return s.repository.ListSteps(ctx, tourID)
}

// requireCompleteSet checks that got is a permutation of want
func requireCompleteSet(got, want []uint64) error {
	if len(got) != len(want) {
		return fmt.Errorf("expected %d ids, got %d", len(want), len(got))
	}

	sortedGot := slices.Clone(got)
	sortedWant := slices.Clone(want)
	slices.Sort(sortedGot)
	slices.Sort(sortedWant)

	if !slices.Equal(sortedGot, sortedWant) {
		return fmt.Errorf("id set does not match stored entities")
	}
	return nil
}
