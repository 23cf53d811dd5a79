package domain

import "time"

// Screen is one screenshot in a tour. Order is zero-based and gapless
// within the tour; reorder and delete renumber the survivors.
type Screen struct {
	ID       uint64 `gorm:"primaryKey" json:"id"`
	TourID   uint64 `gorm:"index;not null" json:"tour_id"`
	Order    int    `gorm:"column:sort_order;not null" json:"order"`
	ImageURL string `gorm:"size:2048;not null" json:"image_url"`

	// Natural image dimensions, used only to pick an aspect ratio.
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`

	Hotspots []Hotspot `gorm:"constraint:OnDelete:CASCADE" json:"hotspots,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
