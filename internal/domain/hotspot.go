package domain

import "time"

const (
	HotspotKindIntro   = "intro"
	HotspotKindClosing = "closing"
	HotspotKindAction  = "action"
)

const (
	CTAActionNext   = "next"
	CTAActionScreen = "screen"
	CTAActionURL    = "url"
)

// Geometry limits for the normalized bounding box.
const (
	HotspotMinSize = 0.02
	HotspotMaxSize = 0.8
)

// ArrowPositions are the nine compass placements a tooltip balloon can
// anchor to, relative to the beacon.
var ArrowPositions = []string{
	"top-left", "top-center", "top-right",
	"middle-left", "middle-center", "middle-right",
	"bottom-left", "bottom-center", "bottom-right",
}

// Position is the normalized bounding box: x/y is the center, w/h the
// size, all fractions of the screen image in [0,1].
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type Style struct {
	Color        string `gorm:"size:32" json:"color"`
	Background   string `gorm:"size:32" json:"background"`
	Font         string `gorm:"size:64" json:"font"`
	CornerRadius int    `json:"corner_radius"`
}

type Highlight struct {
	Backdrop        bool    `json:"backdrop"`
	BackdropColor   string  `gorm:"size:32" json:"backdrop_color"`
	BackdropOpacity float64 `json:"backdrop_opacity"`
	Spotlight       bool    `json:"spotlight"`
	SpotlightColor  string  `gorm:"size:32" json:"spotlight_color"`
	SpotlightPad    int     `json:"spotlight_pad"`
}

type CTA struct {
	Enabled        bool    `json:"enabled"`
	Text           string  `gorm:"size:255" json:"text"`
	Action         string  `gorm:"size:20" json:"action"`
	TargetScreenID *uint64 `json:"target_screen_id,omitempty"`
	URL            string  `gorm:"size:2048" json:"url"`
}

// Arrow describes where the tooltip balloon sits relative to the beacon
// and which corner renders the pointing arrow. Offsets are fractions of
// the screen image applied as extra translation.
type Arrow struct {
	Position string  `gorm:"size:20" json:"position"`
	OffsetX  float64 `json:"offset_x"`
	OffsetY  float64 `json:"offset_y"`
}

type Config struct {
	ShowStepNumber   bool    `json:"show_step_number"`
	ShowBackButton   bool    `json:"show_back_button"`
	AutoAdvance      bool    `json:"auto_advance"`
	AutoAdvanceDelay float64 `json:"auto_advance_delay"`
}

// Hotspot is a click target, call-out or modal placed on a screen.
// OrderInScreen is zero-based and gapless within the screen.
type Hotspot struct {
	ID       uint64 `gorm:"primaryKey" json:"id"`
	ScreenID uint64 `gorm:"index;not null" json:"screen_id"`
	// TargetScreenID is set on navigation-type hotspots that jump to a
	// specific screen instead of the next one.
	TargetScreenID *uint64 `json:"target_screen_id,omitempty"`

	Kind          string `gorm:"size:20;default:action" json:"kind"`
	OrderInScreen int    `gorm:"not null" json:"order_in_screen"`

	Label   string `gorm:"size:255" json:"label"`
	Tooltip string `gorm:"size:1024" json:"tooltip"`
	Body    string `gorm:"type:text" json:"body"`

	Position  Position  `gorm:"embedded;embeddedPrefix:pos_" json:"position"`
	Style     Style     `gorm:"embedded;embeddedPrefix:style_" json:"style"`
	Highlight Highlight `gorm:"embedded;embeddedPrefix:hl_" json:"highlight"`
	Primary   CTA       `gorm:"embedded;embeddedPrefix:cta1_" json:"primary_cta"`
	Secondary CTA       `gorm:"embedded;embeddedPrefix:cta2_" json:"secondary_cta"`
	Arrow     Arrow     `gorm:"embedded;embeddedPrefix:arrow_" json:"arrow"`
	Config    Config    `gorm:"embedded;embeddedPrefix:cfg_" json:"config"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyDefaults fills the blanks a freshly created hotspot arrives with.
// Defaults differ by kind: modals (intro/closing) get a backdrop and a
// primary "next" button, beacons get a tooltip arrow.
func (h *Hotspot) ApplyDefaults() {
	if h.Kind == "" {
		h.Kind = HotspotKindAction
	}
	h.Position.applyDefaults()
	h.Style.applyDefaults()

	switch h.Kind {
	case HotspotKindIntro, HotspotKindClosing:
		if !h.Highlight.Backdrop {
			h.Highlight.Backdrop = true
			h.Highlight.BackdropColor = "#000000"
			h.Highlight.BackdropOpacity = 0.5
		}
		if !h.Primary.Enabled {
			h.Primary.Enabled = true
			h.Primary.Action = CTAActionNext
		}
		if h.Primary.Text == "" {
			h.Primary.Text = "Next"
		}
	default:
		if h.Arrow.Position == "" {
			h.Arrow.Position = "bottom-center"
		}
	}

	if h.Primary.Action == "" {
		h.Primary.Action = CTAActionNext
	}
	if h.Secondary.Action == "" {
		h.Secondary.Action = CTAActionNext
	}
}

func (p *Position) applyDefaults() {
	if p.W == 0 {
		p.W = HotspotMinSize
	}
	if p.H == 0 {
		p.H = HotspotMinSize
	}
	p.W = clamp(p.W, HotspotMinSize, HotspotMaxSize)
	p.H = clamp(p.H, HotspotMinSize, HotspotMaxSize)
	p.X = clamp(p.X, 0, 1)
	p.Y = clamp(p.Y, 0, 1)
}

func (s *Style) applyDefaults() {
	if s.Color == "" {
		s.Color = "#1a1a2e"
	}
	if s.Background == "" {
		s.Background = "#ffffff"
	}
	if s.CornerRadius == 0 {
		s.CornerRadius = 8
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
