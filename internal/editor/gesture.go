package editor

import (
	"context"
	"log"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
)

// One drag or resize gesture owns the interaction state from begin to
// end. Intermediate moves touch only the in-memory tree; the store
// sees a single geometry commit when the pointer is released.

type gesturePhase int

const (
	gestureIdle gesturePhase = iota
	gestureDragging
	gestureResizing
)

type gestureState struct {
	phase     gesturePhase
	hotspotID uint64
	corner    string
	origin    domain.Position
}

func (s *Session) BeginDrag(hotspotID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture.phase != gestureIdle {
		return errors.Conflict("A gesture is already in progress", nil)
	}

	hotspot := s.tree.FindHotspot(hotspotID)
	if hotspot == nil {
		return errors.NotFound("Hotspot not found", nil)
	}

	s.gesture = gestureState{
		phase:     gestureDragging,
		hotspotID: hotspotID,
		origin:    hotspot.Position,
	}
	return nil
}

func (s *Session) BeginResize(hotspotID uint64, corner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture.phase != gestureIdle {
		return errors.Conflict("A gesture is already in progress", nil)
	}
	if corner != "nw" && corner != "ne" && corner != "sw" && corner != "se" {
		return errors.BadRequest("Unknown resize corner", nil)
	}

	hotspot := s.tree.FindHotspot(hotspotID)
	if hotspot == nil {
		return errors.NotFound("Hotspot not found", nil)
	}

	s.gesture = gestureState{
		phase:     gestureResizing,
		hotspotID: hotspotID,
		corner:    corner,
		origin:    hotspot.Position,
	}
	return nil
}

// MoveGesture applies one pointer-move frame, in memory only.
// Deltas are fractions of the screen image, relative to gesture start.
func (s *Session) MoveGesture(dx, dy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture.phase == gestureIdle {
		return errors.Conflict("No gesture in progress", nil)
	}

	hotspot := s.tree.FindHotspot(s.gesture.hotspotID)
	if hotspot == nil {
		// deleted mid-gesture by another surface; drop the gesture
		s.gesture = gestureState{}
		return errors.NotFound("Hotspot not found", nil)
	}

	origin := s.gesture.origin
	switch s.gesture.phase {
	case gestureDragging:
		hotspot.Position.X = clamp01(origin.X + dx)
		hotspot.Position.Y = clamp01(origin.Y + dy)
	case gestureResizing:
		hotspot.Position = resize(origin, s.gesture.corner, dx, dy)
	}
	return nil
}

// EndGesture commits the final geometry once, then releases the
// gesture. This is the only store write of the whole gesture.
func (s *Session) EndGesture(ctx context.Context) error {
	s.mu.Lock()

	if s.gesture.phase == gestureIdle {
		s.mu.Unlock()
		return errors.Conflict("No gesture in progress", nil)
	}

	hotspotID := s.gesture.hotspotID
	s.gesture = gestureState{}

	hotspot := s.tree.FindHotspot(hotspotID)
	if hotspot == nil {
		s.mu.Unlock()
		return errors.NotFound("Hotspot not found", nil)
	}

	fields := map[string]any{
		"position": map[string]any{
			"x": hotspot.Position.X,
			"y": hotspot.Position.Y,
			"w": hotspot.Position.W,
			"h": hotspot.Position.H,
		},
	}
	s.markDirtyLocked()
	s.mu.Unlock()

	go func() {
		if err := s.store.UpdateHotspot(context.Background(), hotspotID, fields); err != nil {
			log.Printf("[EDITOR] gesture commit for hotspot %d failed: %v", hotspotID, err)
		}
	}()

	return nil
}

// CancelGesture restores the geometry from gesture start
func (s *Session) CancelGesture() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture.phase == gestureIdle {
		return
	}

	if hotspot := s.tree.FindHotspot(s.gesture.hotspotID); hotspot != nil {
		hotspot.Position = s.gesture.origin
	}
	s.gesture = gestureState{}
}

func resize(origin domain.Position, corner string, dx, dy float64) domain.Position {
	// Opposite corner stays fixed; the dragged corner follows the
	// pointer. Width/height stay inside the allowed range.
	switch corner {
	case "nw":
		dx, dy = -dx, -dy
	case "ne":
		dy = -dy
	case "sw":
		dx = -dx
	}

	w := clampSize(origin.W + dx)
	h := clampSize(origin.H + dy)

	pos := domain.Position{W: w, H: h}
	switch corner {
	case "nw":
		pos.X = clamp01(origin.X + (origin.W-w)/2)
		pos.Y = clamp01(origin.Y + (origin.H-h)/2)
	case "ne":
		pos.X = clamp01(origin.X + (w-origin.W)/2)
		pos.Y = clamp01(origin.Y + (origin.H-h)/2)
	case "sw":
		pos.X = clamp01(origin.X + (origin.W-w)/2)
		pos.Y = clamp01(origin.Y + (h-origin.H)/2)
	default: // se
		pos.X = clamp01(origin.X + (w-origin.W)/2)
		pos.Y = clamp01(origin.Y + (h-origin.H)/2)
	}
	return pos
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSize(v float64) float64 {
	if v < domain.HotspotMinSize {
		return domain.HotspotMinSize
	}
	if v > domain.HotspotMaxSize {
		return domain.HotspotMaxSize
	}
	return v
}
