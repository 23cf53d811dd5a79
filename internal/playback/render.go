package playback

import (
	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/revision"
)

// Render instruction kinds
const (
	RenderModal  = "modal"  // intro/closing hotspot: centered modal over a backdrop
	RenderBeacon = "beacon" // action hotspot: pulsing beacon plus tooltip balloon
	RenderScreen = "screen" // screen with no hotspots: arrows only
)

// TooltipAnchor is how the balloon attaches to the beacon: a CSS-style
// transform anchoring the balloon on one side, and the edge of the
// balloon that renders the pointing arrow (the side facing the beacon).
type TooltipAnchor struct {
	Transform string `json:"transform"`
	ArrowEdge string `json:"arrow_edge"`
}

// anchors maps the nine compass placements of the balloon relative to
// the beacon.
var anchors = map[string]TooltipAnchor{
	"top-left":      {Transform: "translate(-100%, -100%)", ArrowEdge: "bottom-right"},
	"top-center":    {Transform: "translate(-50%, -100%)", ArrowEdge: "bottom-center"},
	"top-right":     {Transform: "translate(0, -100%)", ArrowEdge: "bottom-left"},
	"middle-left":   {Transform: "translate(-100%, -50%)", ArrowEdge: "right-center"},
	"middle-center": {Transform: "translate(-50%, -50%)", ArrowEdge: ""},
	"middle-right":  {Transform: "translate(0, -50%)", ArrowEdge: "left-center"},
	"bottom-left":   {Transform: "translate(-100%, 0)", ArrowEdge: "top-right"},
	"bottom-center": {Transform: "translate(-50%, 0)", ArrowEdge: "top-center"},
	"bottom-right":  {Transform: "translate(0, 0)", ArrowEdge: "top-left"},
}

type Instruction struct {
	Kind string `json:"kind"`

	Screen   revision.SnapshotScreen   `json:"screen"`
	Hotspot  *revision.SnapshotHotspot `json:"hotspot,omitempty"`
	Anchor   *TooltipAnchor            `json:"anchor,omitempty"`
	OffsetX  float64                   `json:"offset_x,omitempty"`
	OffsetY  float64                   `json:"offset_y,omitempty"`
	Backdrop bool                      `json:"backdrop"`

	// Progress for the segmented control
	ScreenNumber int  `json:"screen_number"`
	TotalScreens int  `json:"total_screens"`
	AtStart      bool `json:"at_start"`
	AtEnd        bool `json:"at_end"`
}

// Render describes what the viewer should draw for the current state
func (e *Engine) Render() Instruction {
	screens := e.snapshot.Screens
	screen := screens[e.state.ScreenIndex]

	inst := Instruction{
		Kind:         RenderScreen,
		Screen:       screen,
		ScreenNumber: e.state.ScreenIndex + 1,
		TotalScreens: len(screens),
		AtStart:      e.state.ScreenIndex == 0 && e.state.HotspotIndex == 0,
		AtEnd:        e.atEnd(),
	}

	// A screen with no hotspots is legal: only the arrows move on.
	if len(screen.Hotspots) == 0 {
		return inst
	}

	hotspot := screen.Hotspots[e.state.HotspotIndex]
	inst.Hotspot = &hotspot

	switch hotspot.Kind {
	case domain.HotspotKindIntro, domain.HotspotKindClosing:
		inst.Kind = RenderModal
		inst.Backdrop = true
	default:
		inst.Kind = RenderBeacon
		inst.Backdrop = hotspot.Highlight.Backdrop
		if anchor, ok := anchors[hotspot.Arrow.Position]; ok {
			inst.Anchor = &anchor
		} else {
			anchor := anchors["bottom-center"]
			inst.Anchor = &anchor
		}
		inst.OffsetX = hotspot.Arrow.OffsetX
		inst.OffsetY = hotspot.Arrow.OffsetY
	}

	return inst
}

func (e *Engine) atEnd() bool {
	lastScreen := len(e.snapshot.Screens) - 1
	if e.state.ScreenIndex != lastScreen {
		return false
	}
	hotspots := e.snapshot.Screens[lastScreen].Hotspots
	return len(hotspots) == 0 || e.state.HotspotIndex == len(hotspots)-1
}

// Input surfaces. All of them funnel into the same three transitions.
const (
	InputBeaconClick = "beacon_click"
	InputNext        = "next"
	InputBack        = "back"
	InputKeyRight    = "key_right"
	InputKeyLeft     = "key_left"
	InputKeySpace    = "key_space"
	InputGoToStep    = "go_to_step"
)

// HandleInput maps an input surface onto a transition. GoToStep takes
// the target screen index as its argument.
func (e *Engine) HandleInput(input string, arg int) State {
	switch input {
	case InputBeaconClick:
		return e.Advance(TriggerHotspot)
	case InputNext, InputKeyRight, InputKeySpace:
		return e.Advance(TriggerArrow)
	case InputBack, InputKeyLeft:
		return e.Retreat()
	case InputGoToStep:
		return e.JumpToScreen(arg)
	}
	return e.state
}
