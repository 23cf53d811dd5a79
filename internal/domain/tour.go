package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TourStatusDraft     = "draft"
	TourStatusPublished = "published"
)

type Tour struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	WorkspaceID uint64 `gorm:"index;not null" json:"workspace_id"`
	// PublicID is the unguessable identifier used by the public playback
	// and embed routes. Never reuse the numeric primary key there.
	PublicID    string `gorm:"uniqueIndex;size:36;not null" json:"public_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"size:20;default:draft" json:"status"`

	ShowBranding   bool           `gorm:"default:true" json:"show_branding"`
	Password       *string        `gorm:"size:255" json:"-"`
	AllowedDomains datatypes.JSON `json:"allowed_domains"`
	ThumbnailURL   *string        `gorm:"size:2048" json:"thumbnail_url"`

	// CurrentRevisionID points at the live revision. Nil means the tour
	// has never been published. Unpublish flips Status back to draft but
	// keeps the pointer so history stays browsable.
	CurrentRevisionID *uint64    `json:"current_revision_id"`
	PublishedAt       *time.Time `json:"published_at"`

	CreatedByID uint64    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPublished reports whether the tour is live. Status and the revision
// pointer are kept in sync by the publisher; both are checked so a
// half-written row never serves publicly.
func (t *Tour) IsPublished() bool {
	return t.Status == TourStatusPublished && t.CurrentRevisionID != nil
}
