package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPatch_FlattensGroups(t *testing.T) {
	patch, err := buildPatch(map[string]any{
		"tooltip": "Click the export button",
		"position": map[string]any{
			"x": 0.5,
			"y": 0.25,
		},
		"style": map[string]any{
			"color": "#1a1a1a",
		},
	}, hotspotFields)

	assert.NoError(t, err)
	assert.Equal(t, map[string]any{
		"tooltip":     "Click the export button",
		"pos_x":       0.5,
		"pos_y":       0.25,
		"style_color": "#1a1a1a",
	}, patch)
}

func TestBuildPatch_RejectsUnknownFields(t *testing.T) {
	_, err := buildPatch(map[string]any{"sort_order": 3}, hotspotFields)
	assert.Error(t, err)

	_, err = buildPatch(map[string]any{"screen_id": 2}, hotspotFields)
	assert.Error(t, err)

	_, err = buildPatch(map[string]any{
		"position": map[string]any{"x": 0.5, "rotation": 45},
	}, hotspotFields)
	assert.Error(t, err)
}

func TestBuildPatch_GroupMustBeObject(t *testing.T) {
	_, err := buildPatch(map[string]any{"position": "0.5,0.5"}, hotspotFields)
	assert.Error(t, err)
}

func TestBuildPatch_ValidatesEnums(t *testing.T) {
	_, err := buildPatch(map[string]any{"kind": "banner"}, hotspotFields)
	assert.Error(t, err)

	_, err = buildPatch(map[string]any{
		"arrow": map[string]any{"position": "upper-middle"},
	}, hotspotFields)
	assert.Error(t, err)

	_, err = buildPatch(map[string]any{
		"primary_cta": map[string]any{"action": "teleport"},
	}, hotspotFields)
	assert.Error(t, err)

	patch, err := buildPatch(map[string]any{
		"kind":  "closing",
		"arrow": map[string]any{"position": "top-center"},
	}, hotspotFields)
	assert.NoError(t, err)
	assert.Equal(t, "closing", patch["kind"])
	assert.Equal(t, "top-center", patch["arrow_position"])
}

func TestBuildPatch_ValidatesGeometryRanges(t *testing.T) {
	_, err := buildPatch(map[string]any{
		"position": map[string]any{"x": 1.2},
	}, hotspotFields)
	assert.Error(t, err)

	_, err = buildPatch(map[string]any{
		"position": map[string]any{"w": 0.001},
	}, hotspotFields)
	assert.Error(t, err)

	_, err = buildPatch(map[string]any{
		"position": map[string]any{"h": 0.9},
	}, hotspotFields)
	assert.Error(t, err)

	patch, err := buildPatch(map[string]any{
		"position": map[string]any{"x": 0.0, "w": 0.02},
	}, hotspotFields)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, patch["pos_x"])
}

func TestBuildPatch_ScreenAndStepSpecs(t *testing.T) {
	patch, err := buildPatch(map[string]any{"image_url": "https://cdn/x.png"}, screenFields)
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", patch["image_url"])

	// ordering columns are never patchable directly
	_, err = buildPatch(map[string]any{"order": 2}, screenFields)
	assert.Error(t, err)

	patch, err = buildPatch(map[string]any{"title": "Step 1", "placement": "bottom"}, stepFields)
	assert.NoError(t, err)
	assert.Equal(t, "Step 1", patch["title"])

	_, err = buildPatch(map[string]any{"tour_id": 9}, stepFields)
	assert.Error(t, err)
}

func TestRequireCompleteSet(t *testing.T) {
	existing := []uint64{1, 2, 3}

	assert.NoError(t, requireCompleteSet([]uint64{3, 1, 2}, existing))

	// missing, extra, duplicated and foreign ids are all rejected
	assert.Error(t, requireCompleteSet([]uint64{1, 2}, existing))
	assert.Error(t, requireCompleteSet([]uint64{1, 2, 3, 4}, existing))
	assert.Error(t, requireCompleteSet([]uint64{1, 2, 2}, existing))
	assert.Error(t, requireCompleteSet([]uint64{1, 2, 9}, existing))
}
