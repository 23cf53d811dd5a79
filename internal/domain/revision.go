package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Revision is an immutable published snapshot of a tour. Content holds
// the frozen JSON shape the public routes render from; it is written
// once at publish time and never updated. Republishing inserts a new
// row with the next number, it never touches an old one.
type Revision struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	TourID uint64 `gorm:"index;not null" json:"tour_id"`

	// RevisionNumber is 1-based and strictly increasing per tour:
	// count of existing revisions plus one.
	RevisionNumber int            `gorm:"not null" json:"revision_number"`
	Content        datatypes.JSON `gorm:"not null" json:"content"`

	PublishedByID uint64    `json:"published_by_id"`
	CreatedAt     time.Time `json:"created_at"`
}
