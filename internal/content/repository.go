package content

import (
	"context"

	"product-tour-builder/internal/domain"

	"gorm.io/gorm"
)

// Repository is the content store: CRUD over screens, hotspots and
// steps plus the compound operations that keep order values contiguous.
type Repository interface {
	CreateScreen(ctx context.Context, screen *domain.Screen) (firstScreen bool, err error)
	FindScreen(ctx context.Context, id uint64) (*domain.Screen, error)
	UpdateScreen(ctx context.Context, id uint64, patch map[string]any) error
	ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error)
	DeleteScreen(ctx context.Context, id uint64) error
	ReorderScreens(ctx context.Context, tourID uint64, orderedIDs []uint64) error
	ScreenIDs(ctx context.Context, tourID uint64) ([]uint64, error)

	CreateHotspot(ctx context.Context, hotspot *domain.Hotspot) error
	FindHotspot(ctx context.Context, id uint64) (*domain.Hotspot, error)
	UpdateHotspot(ctx context.Context, id uint64, patch map[string]any) error
	DeleteHotspot(ctx context.Context, id uint64) error
	ReorderHotspots(ctx context.Context, screenID uint64, orderedIDs []uint64) error
	HotspotIDs(ctx context.Context, screenID uint64) ([]uint64, error)

	CreateStep(ctx context.Context, step *domain.Step) error
	FindStep(ctx context.Context, id uint64) (*domain.Step, error)
	UpdateStep(ctx context.Context, id uint64, patch map[string]any) error
	DeleteStep(ctx context.Context, id uint64) error
	ReorderSteps(ctx context.Context, tourID uint64, orderedIDs []uint64) error
	ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error)
	StepIDs(ctx context.Context, tourID uint64) ([]uint64, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new content repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// CreateScreen appends the screen at the end of the tour and reports
// whether it is the tour's first screen, so the service can seed the
// tour thumbnail from it.
func (r *RepositoryImpl) CreateScreen(ctx context.Context, screen *domain.Screen) (bool, error) {
	var first bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Screen{}).
			Where("tour_id = ?", screen.TourID).
			Count(&count).Error; err != nil {
			return err
		}

		screen.Order = int(count)
		if err := tx.Create(screen).Error; err != nil {
			return err
		}

		first = count == 0
		return nil
	})

	return first, err
}

func (r *RepositoryImpl) FindScreen(ctx context.Context, id uint64) (*domain.Screen, error) {
	var screen domain.Screen
	err := r.db.WithContext(ctx).First(&screen, id).Error
	if err != nil {
		return nil, err
	}
	return &screen, nil
}

func (r *RepositoryImpl) UpdateScreen(ctx context.Context, id uint64, patch map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Screen{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error) {
	var screens []domain.Screen
	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("sort_order ASC").
		Preload("Hotspots", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_in_screen ASC")
		}).
		Find(&screens).Error
	return screens, err
}

// DeleteScreen removes the screen, its hotspots and any step pointing
// at it, then renumbers the surviving screens of the tour from 0.
func (r *RepositoryImpl) DeleteScreen(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var screen domain.Screen
		if err := tx.First(&screen, id).Error; err != nil {
			return err
		}

		if err := tx.Where("screen_id = ?", id).Delete(&domain.Hotspot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("screen_id = ?", id).Delete(&domain.Step{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Screen{}, id).Error; err != nil {
			return err
		}

		return renumberScreens(tx, screen.TourID)
	})
}

// ReorderScreens rewrites each screen's order to its index in the
// given list. The caller must pass the complete id set for the tour;
// the service validates that before calling in.
func (r *RepositoryImpl) ReorderScreens(ctx context.Context, tourID uint64, orderedIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&domain.Screen{}).
				Where("id = ? AND tour_id = ?", id, tourID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RepositoryImpl) ScreenIDs(ctx context.Context, tourID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&domain.Screen{}).
		Where("tour_id = ?", tourID).
		Order("sort_order ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *RepositoryImpl) CreateHotspot(ctx context.Context, hotspot *domain.Hotspot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Hotspot{}).
			Where("screen_id = ?", hotspot.ScreenID).
			Count(&count).Error; err != nil {
			return err
		}

		hotspot.OrderInScreen = int(count)
		return tx.Create(hotspot).Error
	})
}

func (r *RepositoryImpl) FindHotspot(ctx context.Context, id uint64) (*domain.Hotspot, error) {
	var hotspot domain.Hotspot
	err := r.db.WithContext(ctx).First(&hotspot, id).Error
	if err != nil {
		return nil, err
	}
	return &hotspot, nil
}

func (r *RepositoryImpl) UpdateHotspot(ctx context.Context, id uint64, patch map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Hotspot{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteHotspot is idempotent: deleting an id that is already gone is
// a no-op success, because concurrent optimistic deletes from the
// editor are expected.
func (r *RepositoryImpl) DeleteHotspot(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hotspot domain.Hotspot
		err := tx.First(&hotspot, id).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Where("hotspot_id = ?", id).
			Model(&domain.Step{}).
			Update("hotspot_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Hotspot{}, id).Error; err != nil {
			return err
		}

		return renumberHotspots(tx, hotspot.ScreenID)
	})
}

func (r *RepositoryImpl) ReorderHotspots(ctx context.Context, screenID uint64, orderedIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&domain.Hotspot{}).
				Where("id = ? AND screen_id = ?", id, screenID).
				Update("order_in_screen", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RepositoryImpl) HotspotIDs(ctx context.Context, screenID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&domain.Hotspot{}).
		Where("screen_id = ?", screenID).
		Order("order_in_screen ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *RepositoryImpl) CreateStep(ctx context.Context, step *domain.Step) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Step{}).
			Where("tour_id = ?", step.TourID).
			Count(&count).Error; err != nil {
			return err
		}

		step.Order = int(count)
		return tx.Create(step).Error
	})
}

func (r *RepositoryImpl) FindStep(ctx context.Context, id uint64) (*domain.Step, error) {
	var step domain.Step
	err := r.db.WithContext(ctx).First(&step, id).Error
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *RepositoryImpl) UpdateStep(ctx context.Context, id uint64, patch map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Step{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteStep(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var step domain.Step
		if err := tx.First(&step, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Step{}, id).Error; err != nil {
			return err
		}
		return renumberSteps(tx, step.TourID)
	})
}

func (r *RepositoryImpl) ReorderSteps(ctx context.Context, tourID uint64, orderedIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&domain.Step{}).
				Where("id = ? AND tour_id = ?", id, tourID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RepositoryImpl) ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error) {
	var steps []domain.Step
	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("sort_order ASC").
		Find(&steps).Error
	return steps, err
}

func (r *RepositoryImpl) StepIDs(ctx context.Context, tourID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&domain.Step{}).
		Where("tour_id = ?", tourID).
		Order("sort_order ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// renumberScreens compacts sort_order back to 0..n-1 after a delete
func renumberScreens(tx *gorm.DB, tourID uint64) error {
	var ids []uint64
	if err := tx.Model(&domain.Screen{}).
		Where("tour_id = ?", tourID).
		Order("sort_order ASC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	for i, id := range ids {
		if err := tx.Model(&domain.Screen{}).
			Where("id = ?", id).
			Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func renumberHotspots(tx *gorm.DB, screenID uint64) error {
	var ids []uint64
	if err := tx.Model(&domain.Hotspot{}).
		Where("screen_id = ?", screenID).
		Order("order_in_screen ASC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	for i, id := range ids {
		if err := tx.Model(&domain.Hotspot{}).
			Where("id = ?", id).
			Update("order_in_screen", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func renumberSteps(tx *gorm.DB, tourID uint64) error {
	var ids []uint64
	if err := tx.Model(&domain.Step{}).
		Where("tour_id = ?", tourID).
		Order("sort_order ASC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	for i, id := range ids {
		if err := tx.Model(&domain.Step{}).
			Where("id = ?", id).
			Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}
