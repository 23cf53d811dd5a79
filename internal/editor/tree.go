package editor

import (
	"encoding/json"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
)

// Tree is the in-memory copy of a tour's content an editing session
// renders from. Every edit lands here synchronously; persistence
// trails behind it.
type Tree struct {
	Tour    domain.Tour     `json:"tour"`
	Screens []domain.Screen `json:"screens"`
	Steps   []domain.Step   `json:"steps"`
}

// ApplyScreen merges sparse fields into the screen. Merging goes
// through JSON so the patch shape is exactly what the HTTP surface
// accepts: provided fields overwrite, absent fields stay.
func (t *Tree) ApplyScreen(id uint64, fields map[string]any) error {
	for i := range t.Screens {
		if t.Screens[i].ID == id {
			return mergeFields(&t.Screens[i], fields)
		}
	}
	return errors.NotFound("Screen not found", nil)
}

func (t *Tree) ApplyHotspot(id uint64, fields map[string]any) error {
	for i := range t.Screens {
		for j := range t.Screens[i].Hotspots {
			if t.Screens[i].Hotspots[j].ID == id {
				return mergeFields(&t.Screens[i].Hotspots[j], fields)
			}
		}
	}
	return errors.NotFound("Hotspot not found", nil)
}

func (t *Tree) ApplyStep(id uint64, fields map[string]any) error {
	for i := range t.Steps {
		if t.Steps[i].ID == id {
			return mergeFields(&t.Steps[i], fields)
		}
	}
	return errors.NotFound("Step not found", nil)
}

// FindHotspot returns the in-memory hotspot, or nil
func (t *Tree) FindHotspot(id uint64) *domain.Hotspot {
	for i := range t.Screens {
		for j := range t.Screens[i].Hotspots {
			if t.Screens[i].Hotspots[j].ID == id {
				return &t.Screens[i].Hotspots[j]
			}
		}
	}
	return nil
}

func mergeFields(dst any, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
