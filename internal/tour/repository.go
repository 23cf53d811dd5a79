package tour

import (
	"context"
	"time"

	"product-tour-builder/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tour *domain.Tour) error
	FindByID(ctx context.Context, id uint64) (*domain.Tour, error)
	FindByPublicID(ctx context.Context, publicID string) (*domain.Tour, error)
	ListByWorkspace(ctx context.Context, workspaceID uint64, page, pageSize int) ([]domain.Tour, ToursMeta, error)
	Update(ctx context.Context, id uint64, patch map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new tour repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, tour *domain.Tour) error {
	tour.CreatedAt = time.Now().UTC() // Use UTC for consistency
	tour.UpdatedAt = time.Now().UTC()
	tour.Status = domain.TourStatusDraft
	return r.db.WithContext(ctx).Create(tour).Error
}

type ToursMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

func (r *RepositoryImpl) ListByWorkspace(ctx context.Context, workspaceID uint64, page, pageSize int) ([]domain.Tour, ToursMeta, error) {
	var tours []domain.Tour
	var totalRecords int64

	// Count total records
	if err := r.db.WithContext(ctx).Model(&domain.Tour{}).
		Where("workspace_id = ?", workspaceID).
		Count(&totalRecords).Error; err != nil {
		return tours, ToursMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&tours).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return tours, ToursMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Tour, error) {
	var tour domain.Tour
	err := r.db.WithContext(ctx).First(&tour, id).Error
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *RepositoryImpl) FindByPublicID(ctx context.Context, publicID string) (*domain.Tour, error) {
	var tour domain.Tour
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&tour).Error
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, id uint64, patch map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Tour{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a tour with all of its content and history
func (r *RepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var screenIDs []uint64
		if err := tx.Model(&domain.Screen{}).
			Where("tour_id = ?", id).
			Pluck("id", &screenIDs).Error; err != nil {
			return err
		}

		if len(screenIDs) > 0 {
			if err := tx.Where("screen_id IN ?", screenIDs).Delete(&domain.Hotspot{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("tour_id = ?", id).Delete(&domain.Step{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tour_id = ?", id).Delete(&domain.Screen{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tour_id = ?", id).Delete(&domain.Revision{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&domain.Tour{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
