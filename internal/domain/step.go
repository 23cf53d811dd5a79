package domain

import "time"

// Step is the looser "guided steps" grouping. It references a screen and
// optionally one of its hotspots, and carries its own order, independent
// of hotspot ordering.
type Step struct {
	ID        uint64  `gorm:"primaryKey" json:"id"`
	TourID    uint64  `gorm:"index;not null" json:"tour_id"`
	ScreenID  uint64  `gorm:"index;not null" json:"screen_id"`
	HotspotID *uint64 `json:"hotspot_id,omitempty"`

	Order     int    `gorm:"column:sort_order;not null" json:"order"`
	Title     string `gorm:"size:255" json:"title"`
	Body      string `gorm:"type:text" json:"body"`
	Placement string `gorm:"size:20" json:"placement"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
