package revision

import (
	"context"
	"time"

	"product-tour-builder/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	PublishRevision(ctx context.Context, tourID uint64, content []byte, publishedByID uint64) (*domain.Revision, error)
	Unpublish(ctx context.Context, tourID uint64) error
	Restore(ctx context.Context, tourID uint64, revisionID uint64) error
	FindByID(ctx context.Context, id uint64) (*domain.Revision, error)
	FindByNumber(ctx context.Context, tourID uint64, number int) (*domain.Revision, error)
	ListByTour(ctx context.Context, tourID uint64) ([]domain.Revision, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new revision repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// PublishRevision inserts the snapshot and repoints the tour's live
// pointer in one transaction, so no reader ever sees a revision row
// without the matching tour state.
func (r *RepositoryImpl) PublishRevision(ctx context.Context, tourID uint64, content []byte, publishedByID uint64) (*domain.Revision, error) {
	var rev domain.Revision

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Revision{}).
			Where("tour_id = ?", tourID).
			Count(&count).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		rev = domain.Revision{
			TourID:         tourID,
			RevisionNumber: int(count) + 1,
			Content:        datatypes.JSON(content),
			PublishedByID:  publishedByID,
			CreatedAt:      now,
		}
		if err := tx.Create(&rev).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Tour{}).
			Where("id = ?", tourID).
			Updates(map[string]any{
				"status":              domain.TourStatusPublished,
				"published_at":        now,
				"current_revision_id": rev.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// Unpublish flips the tour back to draft. The revision pointer and the
// rows themselves stay: history is preserved and a later publish keeps
// counting from the existing maximum.
func (r *RepositoryImpl) Unpublish(ctx context.Context, tourID uint64) error {
	res := r.db.WithContext(ctx).Model(&domain.Tour{}).
		Where("id = ?", tourID).
		Update("status", domain.TourStatusDraft)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore repoints the live pointer at an older revision of the same
// tour. No revision rows are touched.
func (r *RepositoryImpl) Restore(ctx context.Context, tourID uint64, revisionID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rev domain.Revision
		if err := tx.Where("id = ? AND tour_id = ?", revisionID, tourID).
			First(&rev).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Tour{}).
			Where("id = ?", tourID).
			Updates(map[string]any{
				"status":              domain.TourStatusPublished,
				"published_at":        time.Now().UTC(),
				"current_revision_id": rev.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Revision, error) {
	var rev domain.Revision
	err := r.db.WithContext(ctx).First(&rev, id).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *RepositoryImpl) FindByNumber(ctx context.Context, tourID uint64, number int) (*domain.Revision, error) {
	var rev domain.Revision
	err := r.db.WithContext(ctx).
		Where("tour_id = ? AND revision_number = ?", tourID, number).
		First(&rev).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *RepositoryImpl) ListByTour(ctx context.Context, tourID uint64) ([]domain.Revision, error) {
	var revs []domain.Revision
	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("revision_number DESC").
		Find(&revs).Error
	return revs, err
}
