package revision

import (
	"product-tour-builder/internal/domain"
)

// Snapshot is the frozen shape stored inside a revision's content
// column. The public and embed routes render from this alone, with no
// access to the live tables, so the shape is versioned independently of
// the live schema: future changes to Screen or Hotspot never corrupt
// history.
type Snapshot struct {
	Screens  []SnapshotScreen `json:"screens"`
	Steps    []SnapshotStep   `json:"steps"`
	Settings SnapshotSettings `json:"settings"`
}

type SnapshotScreen struct {
	ID       uint64            `json:"id"`
	Order    int               `json:"order"`
	ImageURL string            `json:"imageUrl"`
	Width    *int              `json:"width,omitempty"`
	Height   *int              `json:"height,omitempty"`
	Hotspots []SnapshotHotspot `json:"hotspots"`
}

type SnapshotHotspot struct {
	ID             uint64           `json:"id"`
	Kind           string           `json:"kind"`
	OrderInScreen  int              `json:"orderInScreen"`
	TargetScreenID *uint64          `json:"targetScreenId,omitempty"`
	Label          string           `json:"label,omitempty"`
	Tooltip        string           `json:"tooltip,omitempty"`
	Body           string           `json:"body,omitempty"`
	Position       domain.Position  `json:"position"`
	Style          domain.Style     `json:"style"`
	Highlight      domain.Highlight `json:"highlight"`
	Primary        domain.CTA       `json:"primaryCta"`
	Secondary      domain.CTA       `json:"secondaryCta"`
	Arrow          domain.Arrow     `json:"arrow"`
	Config         domain.Config    `json:"config"`
}

type SnapshotStep struct {
	ID        uint64  `json:"id"`
	Order     int     `json:"order"`
	ScreenID  uint64  `json:"screenId"`
	HotspotID *uint64 `json:"hotspotId,omitempty"`
	Title     string  `json:"title,omitempty"`
	Body      string  `json:"body,omitempty"`
	Placement string  `json:"placement,omitempty"`
}

type SnapshotSettings struct {
	ShowBranding bool   `json:"showBranding"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
}

// BuildSnapshot deep-copies the current draft state into the frozen
// shape. Screens and hotspots are expected pre-sorted by the content
// store's ordering columns.
func BuildSnapshot(tour *domain.Tour, screens []domain.Screen, steps []domain.Step) Snapshot {
	snap := Snapshot{
		Screens: make([]SnapshotScreen, 0, len(screens)),
		Steps:   make([]SnapshotStep, 0, len(steps)),
		Settings: SnapshotSettings{
			ShowBranding: tour.ShowBranding,
			Name:         tour.Name,
			Description:  tour.Description,
		},
	}

	for _, screen := range screens {
		ss := SnapshotScreen{
			ID:       screen.ID,
			Order:    screen.Order,
			ImageURL: screen.ImageURL,
			Width:    screen.Width,
			Height:   screen.Height,
			Hotspots: make([]SnapshotHotspot, 0, len(screen.Hotspots)),
		}
		for _, hotspot := range screen.Hotspots {
			ss.Hotspots = append(ss.Hotspots, SnapshotHotspot{
				ID:             hotspot.ID,
				Kind:           hotspot.Kind,
				OrderInScreen:  hotspot.OrderInScreen,
				TargetScreenID: hotspot.TargetScreenID,
				Label:          hotspot.Label,
				Tooltip:        hotspot.Tooltip,
				Body:           hotspot.Body,
				Position:       hotspot.Position,
				Style:          hotspot.Style,
				Highlight:      hotspot.Highlight,
				Primary:        hotspot.Primary,
				Secondary:      hotspot.Secondary,
				Arrow:          hotspot.Arrow,
				Config:         hotspot.Config,
			})
		}
		snap.Screens = append(snap.Screens, ss)
	}

	for _, step := range steps {
		snap.Steps = append(snap.Steps, SnapshotStep{
			ID:        step.ID,
			Order:     step.Order,
			ScreenID:  step.ScreenID,
			HotspotID: step.HotspotID,
			Title:     step.Title,
			Body:      step.Body,
			Placement: step.Placement,
		})
	}

	return snap
}
