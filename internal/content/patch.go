package content

import (
	"slices"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
)

// Patches arrive from the editor as sparse JSON: top-level scalar keys
// plus nested group objects (position, style, ...). buildPatch flattens
// them into column updates and rejects anything outside the allow-list,
// so a malformed editor payload can never touch ordering or ownership
// columns.

var screenFields = patchSpec{
	scalars: []string{"image_url", "width", "height"},
}

var stepFields = patchSpec{
	scalars: []string{"screen_id", "hotspot_id", "title", "body", "placement"},
}

var hotspotFields = patchSpec{
	scalars: []string{"kind", "target_screen_id", "label", "tooltip", "body"},
	groups: map[string]patchGroup{
		"position": {
			prefix: "pos_",
			keys:   []string{"x", "y", "w", "h"},
		},
		"style": {
			prefix: "style_",
			keys:   []string{"color", "background", "font", "corner_radius"},
		},
		"highlight": {
			prefix: "hl_",
			keys: []string{
				"backdrop", "backdrop_color", "backdrop_opacity",
				"spotlight", "spotlight_color", "spotlight_pad",
			},
		},
		"primary_cta": {
			prefix: "cta1_",
			keys:   []string{"enabled", "text", "action", "target_screen_id", "url"},
		},
		"secondary_cta": {
			prefix: "cta2_",
			keys:   []string{"enabled", "text", "action", "target_screen_id", "url"},
		},
		"arrow": {
			prefix: "arrow_",
			keys:   []string{"position", "offset_x", "offset_y"},
		},
		"config": {
			prefix: "cfg_",
			keys: []string{
				"show_step_number", "show_back_button",
				"auto_advance", "auto_advance_delay",
			},
		},
	},
}

type patchGroup struct {
	prefix string
	keys   []string
}

type patchSpec struct {
	scalars []string
	groups  map[string]patchGroup
}

func buildPatch(fields map[string]any, spec patchSpec) (map[string]any, error) {
	patch := make(map[string]any, len(fields))

	for key, value := range fields {
		if group, ok := spec.groups[key]; ok {
			nested, ok := value.(map[string]any)
			if !ok {
				return nil, errors.BadRequest("Field '"+key+"' must be an object", nil)
			}
			for nk, nv := range nested {
				if !slices.Contains(group.keys, nk) {
					return nil, errors.BadRequest("Unknown field '"+key+"."+nk+"'", nil)
				}
				if err := checkPatchValue(group.prefix+nk, nv); err != nil {
					return nil, err
				}
				patch[group.prefix+nk] = nv
			}
			continue
		}

		if !slices.Contains(spec.scalars, key) {
			return nil, errors.BadRequest("Unknown field '"+key+"'", nil)
		}
		if err := checkPatchValue(key, value); err != nil {
			return nil, err
		}
		patch[key] = value
	}

	return patch, nil
}

func checkPatchValue(column string, value any) error {
	switch column {
	case "kind":
		s, _ := value.(string)
		if s != domain.HotspotKindIntro && s != domain.HotspotKindClosing && s != domain.HotspotKindAction {
			return errors.BadRequest("Unknown hotspot kind", nil)
		}
	case "arrow_position":
		s, _ := value.(string)
		if !slices.Contains(domain.ArrowPositions, s) {
			return errors.BadRequest("Unknown arrow position", nil)
		}
	case "cta1_action", "cta2_action":
		s, _ := value.(string)
		if s != domain.CTAActionNext && s != domain.CTAActionScreen && s != domain.CTAActionURL {
			return errors.BadRequest("Unknown CTA action", nil)
		}
	case "pos_x", "pos_y":
		f, ok := value.(float64)
		if !ok || f < 0 || f > 1 {
			return errors.BadRequest("Hotspot center must be within [0,1]", nil)
		}
	case "pos_w", "pos_h":
		f, ok := value.(float64)
		if !ok || f < domain.HotspotMinSize || f > domain.HotspotMaxSize {
			return errors.BadRequest("Hotspot size out of range", nil)
		}
	}
	return nil
}
