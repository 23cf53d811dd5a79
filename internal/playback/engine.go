package playback

import (
	"product-tour-builder/internal/analytics"
	"product-tour-builder/internal/revision"
)

// Sink receives engagement events, best-effort. Delivery failures
// never reach the engine.
type Sink interface {
	Emit(event analytics.Event)
}

// Trigger says which input surface drove a transition; it only affects
// which events are emitted, never the transition itself.
type Trigger int

const (
	TriggerArrow   Trigger = iota // generic next/back arrow, key or space
	TriggerHotspot                // click on the beacon / modal CTA
	TriggerHost                   // external go-to-step command
)

// State is the full playback position: both indices are zero-based.
type State struct {
	ScreenIndex  int `json:"screen_index"`
	HotspotIndex int `json:"hotspot_index"`
}

// Viewer identifies who is watching, for the event stream
type Viewer struct {
	DemoID    uint64
	PublicID  string
	ViewerID  string
	SessionID string
	Referrer  string
	UserAgent string
}

// Engine walks a published snapshot screen-by-screen and
// hotspot-by-hotspot. It is deterministic: the same input sequence on
// the same snapshot always produces the same states and events.
type Engine struct {
	snapshot *revision.Snapshot
	sink     Sink
	viewer   Viewer

	state     State
	completed bool
}

func NewEngine(snapshot *revision.Snapshot, sink Sink, viewer Viewer) *Engine {
	return &Engine{
		snapshot: snapshot,
		sink:     sink,
		viewer:   viewer,
	}
}

// Start emits the mount events for the initial (0,0) state
func (e *Engine) Start() {
	e.emit(analytics.EventDemoView, nil, nil)
	if len(e.snapshot.Screens) > 0 {
		screenID := e.snapshot.Screens[0].ID
		e.emit(analytics.EventScreenView, &screenID, nil)
	}
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Completed() bool {
	return e.completed
}

// Advance moves one hotspot forward, spilling into the next screen
// when the current one is exhausted. At the terminal state it emits
// completion once and otherwise does nothing.
func (e *Engine) Advance(trigger Trigger) State {
	hotspots := e.currentHotspots()

	if trigger == TriggerHotspot && e.state.HotspotIndex < len(hotspots) {
		hotspotID := hotspots[e.state.HotspotIndex].ID
		e.emit(analytics.EventHotspotClick, nil, &hotspotID)
	}

	switch {
	case e.state.HotspotIndex < len(hotspots)-1:
		e.state.HotspotIndex++

	case e.state.ScreenIndex < len(e.snapshot.Screens)-1:
		e.state.ScreenIndex++
		e.state.HotspotIndex = 0
		screenID := e.snapshot.Screens[e.state.ScreenIndex].ID
		e.emit(analytics.EventScreenView, &screenID, nil)
		e.emit(analytics.EventStepNext, &screenID, nil)

	default:
		// terminal: state never moves past the last hotspot
		if !e.completed {
			e.completed = true
			e.emit(analytics.EventDemoComplete, nil, nil)
		}
	}

	return e.state
}

// Retreat is the exact inverse of Advance. At (0,0) it is a no-op.
func (e *Engine) Retreat() State {
	switch {
	case e.state.HotspotIndex > 0:
		e.state.HotspotIndex--

	case e.state.ScreenIndex > 0:
		e.state.ScreenIndex--
		prev := e.snapshot.Screens[e.state.ScreenIndex]
		if len(prev.Hotspots) > 0 {
			e.state.HotspotIndex = len(prev.Hotspots) - 1
		} else {
			e.state.HotspotIndex = 0
		}
		e.emit(analytics.EventScreenView, &prev.ID, nil)
		e.emit(analytics.EventStepBack, &prev.ID, nil)
	}

	return e.state
}

// JumpToScreen is the direct transition behind the segmented progress
// control and the embed go-to-step command.
func (e *Engine) JumpToScreen(index int) State {
	if index < 0 || index >= len(e.snapshot.Screens) {
		return e.state
	}

	changed := index != e.state.ScreenIndex
	e.state.ScreenIndex = index
	e.state.HotspotIndex = 0

	if changed {
		screenID := e.snapshot.Screens[index].ID
		e.emit(analytics.EventScreenView, &screenID, nil)
	}

	return e.state
}

func (e *Engine) currentHotspots() []revision.SnapshotHotspot {
	if e.state.ScreenIndex >= len(e.snapshot.Screens) {
		return nil
	}
	return e.snapshot.Screens[e.state.ScreenIndex].Hotspots
}

func (e *Engine) emit(eventType string, screenID, hotspotID *uint64) {
	stepIndex := e.state.ScreenIndex
	e.sink.Emit(analytics.Event{
		DemoID:    e.viewer.DemoID,
		PublicID:  e.viewer.PublicID,
		ViewerID:  e.viewer.ViewerID,
		SessionID: e.viewer.SessionID,
		EventType: eventType,
		ScreenID:  screenID,
		HotspotID: hotspotID,
		StepIndex: &stepIndex,
		Referrer:  e.viewer.Referrer,
		UserAgent: e.viewer.UserAgent,
	})
}
