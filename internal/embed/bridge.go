package embed

import (
	"fmt"
	"net/url"
)

// MessageSource marks every envelope exchanged with the iframe. Both
// sides drop anything carrying a different source, so unrelated
// postMessage traffic on the host page never reaches the bridge.
const MessageSource = "product-tour-builder"

// Message types crossing the iframe boundary
const (
	MessageReady      = "ready"       // iframe finished loading the snapshot
	MessageResize     = "resize"      // iframe reports its content height
	MessageStepChange = "step_change" // playback moved to another screen
	MessageComplete   = "complete"    // viewer reached the terminal state
	MessageGoToStep   = "go_to_step"  // host commands a jump
)

// Message is the envelope posted between the host page and the iframe
type Message struct {
	Source      string  `json:"source"`
	Type        string  `json:"type"`
	PublicID    string  `json:"public_id"`
	Height      float64 `json:"height,omitempty"`
	ScreenIndex int     `json:"screen_index,omitempty"`
}

// Frame is the host page's handle on the iframe element
type Frame interface {
	Post(message Message)
	SetWidth(css string)
	SetHeight(css string)
	Remove()
}

// Options configure the embed at creation time. They map onto the
// embed route's query parameters.
type Options struct {
	Autoplay     bool
	HideBranding bool
	Width        string
	Height       string
}

// EmbedURL builds the iframe src for a tour
func EmbedURL(baseURL, publicID string, opts Options) string {
	query := url.Values{}
	if opts.Autoplay {
		query.Set("autoplay", "true")
	}
	if opts.HideBranding {
		query.Set("hideBranding", "true")
	}

	u := fmt.Sprintf("%s/embed/%s", baseURL, publicID)
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// SnippetHTML is the copy-paste embed code shown in the editor
func SnippetHTML(baseURL, publicID string, opts Options) string {
	width := opts.Width
	if width == "" {
		width = "100%"
	}
	height := opts.Height
	if height == "" {
		height = "480px"
	}
	return fmt.Sprintf(
		`<iframe src="%s" style="border:none;width:%s;height:%s" allow="fullscreen"></iframe>`,
		EmbedURL(baseURL, publicID, opts), width, height,
	)
}

// Handle is the host-side controller for one embedded tour. It owns
// the auto-height behavior: the iframe's resize reports drive the
// element height until the host sets an explicit size, after which
// resize reports are ignored for good.
type Handle struct {
	frame    Frame
	publicID string

	autoHeight bool
	ready      bool
	destroyed  bool

	onStep     func(screenIndex int)
	onComplete func()
}

func NewHandle(frame Frame, publicID string) *Handle {
	return &Handle{
		frame:      frame,
		publicID:   publicID,
		autoHeight: true,
	}
}

func (h *Handle) OnStepChange(fn func(screenIndex int)) { h.onStep = fn }
func (h *Handle) OnComplete(fn func())                  { h.onComplete = fn }

func (h *Handle) Ready() bool { return h.ready }

// HandleMessage processes one envelope from the iframe. Messages with
// a foreign source or another tour's public id are dropped.
func (h *Handle) HandleMessage(message Message) {
	if h.destroyed {
		return
	}
	if message.Source != MessageSource || message.PublicID != h.publicID {
		return
	}

	switch message.Type {
	case MessageReady:
		h.ready = true
	case MessageResize:
		if h.autoHeight {
			h.frame.SetHeight(fmt.Sprintf("%dpx", int(message.Height)))
		}
	case MessageStepChange:
		if h.onStep != nil {
			h.onStep(message.ScreenIndex)
		}
	case MessageComplete:
		if h.onComplete != nil {
			h.onComplete()
		}
	}
}

// Resize sets an explicit size and turns auto-height off permanently
func (h *Handle) Resize(width, height string) {
	if h.destroyed {
		return
	}
	h.autoHeight = false
	if width != "" {
		h.frame.SetWidth(width)
	}
	if height != "" {
		h.frame.SetHeight(height)
	}
}

// GoToStep commands the embedded playback to jump to a screen
func (h *Handle) GoToStep(screenIndex int) {
	if h.destroyed {
		return
	}
	h.frame.Post(Message{
		Source:      MessageSource,
		Type:        MessageGoToStep,
		PublicID:    h.publicID,
		ScreenIndex: screenIndex,
	})
}

// Destroy removes the iframe. The handle is dead afterwards.
func (h *Handle) Destroy() {
	if h.destroyed {
		return
	}
	h.destroyed = true
	h.frame.Remove()
}
