package editor

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"product-tour-builder/internal/errors"
)

// Store is the slice of the content store the sync engine flushes to
type Store interface {
	UpdateScreen(ctx context.Context, id uint64, fields map[string]any) error
	UpdateHotspot(ctx context.Context, id uint64, fields map[string]any) error
	UpdateStep(ctx context.Context, id uint64, fields map[string]any) error
}

// PersistMode selects how a mutation reaches the store. Geometry from
// drag/resize gestures commits once at gesture end (Immediate); text
// and style edits coalesce in a debounce window.
type PersistMode int

const (
	Immediate PersistMode = iota
	Debounced
)

const (
	EntityScreen  = "screen"
	EntityHotspot = "hotspot"
	EntityStep    = "step"
)

type Mutation struct {
	Entity string         `json:"entity" binding:"required,oneof=screen hotspot step"`
	ID     uint64         `json:"id" binding:"required"`
	Fields map[string]any `json:"fields" binding:"required"`
}

type entityKey struct {
	entity string
	id     uint64
}

// Session keeps one tour's in-memory tree in sync with the store.
// Edits apply to the tree synchronously and unconditionally; store
// writes happen in the background and are never rolled back on
// failure — the optimistic state stays the editor's visible truth.
type Session struct {
	mu    sync.Mutex
	tree  *Tree
	store Store

	pending  map[entityKey]map[string]any
	timer    *time.Timer
	debounce time.Duration

	// dirty is raised on every successful local mutation once the tour
	// has at least one revision, and cleared only by a publish.
	dirty       bool
	hasRevision bool

	gesture gestureState
}

func NewSession(tree *Tree, store Store, debounce time.Duration) *Session {
	return &Session{
		tree:        tree,
		store:       store,
		pending:     make(map[entityKey]map[string]any),
		debounce:    debounce,
		hasRevision: tree.Tour.CurrentRevisionID != nil,
	}
}

// Apply runs one mutation: tree first, then the chosen persistence
// path. A store failure surfaces only in the log.
func (s *Session) Apply(ctx context.Context, mut Mutation, mode PersistMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyToTree(mut); err != nil {
		return err
	}
	s.markDirtyLocked()

	switch mode {
	case Immediate:
		fields := mut.Fields
		go func() {
			if err := s.persist(context.Background(), entityKey{mut.Entity, mut.ID}, fields); err != nil {
				log.Printf("[EDITOR] immediate persist %s %d failed: %v", mut.Entity, mut.ID, err)
			}
		}()
	case Debounced:
		s.enqueueLocked(entityKey{mut.Entity, mut.ID}, mut.Fields)
	}

	return nil
}

func (s *Session) applyToTree(mut Mutation) error {
	switch mut.Entity {
	case EntityScreen:
		return s.tree.ApplyScreen(mut.ID, mut.Fields)
	case EntityHotspot:
		return s.tree.ApplyHotspot(mut.ID, mut.Fields)
	case EntityStep:
		return s.tree.ApplyStep(mut.ID, mut.Fields)
	default:
		return errors.BadRequest("Unknown entity kind", nil)
	}
}

// enqueueLocked merges the patch into the entity's pending map (later
// field values win) and re-arms the single flush timer. Re-arming is
// the only cancellation semantic in the engine.
func (s *Session) enqueueLocked(key entityKey, fields map[string]any) {
	merged, ok := s.pending[key]
	if !ok {
		merged = make(map[string]any, len(fields))
		s.pending[key] = merged
	}
	for k, v := range fields {
		if nested, ok := v.(map[string]any); ok {
			group, _ := merged[k].(map[string]any)
			if group == nil {
				group = make(map[string]any, len(nested))
			}
			for nk, nv := range nested {
				group[nk] = nv
			}
			merged[k] = group
			continue
		}
		merged[k] = v
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.Flush)
}

// Flush drains every pending patch and persists each entity
// independently. There is no cross-entity atomicity; a failed entity
// is logged and dropped, not retried.
func (s *Session) Flush() {
	s.mu.Lock()
	drained := s.pending
	s.pending = make(map[entityKey]map[string]any)
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	for key, fields := range drained {
		if err := s.persist(context.Background(), key, fields); err != nil {
			log.Printf("[EDITOR] flush %s %d failed: %v", key.entity, key.id, err)
		}
	}
}

func (s *Session) persist(ctx context.Context, key entityKey, fields map[string]any) error {
	switch key.entity {
	case EntityScreen:
		return s.store.UpdateScreen(ctx, key.id, fields)
	case EntityHotspot:
		return s.store.UpdateHotspot(ctx, key.id, fields)
	case EntityStep:
		return s.store.UpdateStep(ctx, key.id, fields)
	}
	return nil
}

func (s *Session) markDirtyLocked() {
	if s.hasRevision {
		s.dirty = true
	}
}

// Dirty reports whether there are unpublished changes
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// ClearDirty is called after a successful publish
func (s *Session) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	s.hasRevision = true
}

// Tree returns a detached copy of the in-memory state for rendering.
// The copy is taken under the lock so callers never share slice
// backing arrays with concurrent edits.
func (s *Session) Tree() Tree {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(s.tree)
	if err != nil {
		return *s.tree
	}
	var detached Tree
	if err := json.Unmarshal(raw, &detached); err != nil {
		return *s.tree
	}
	return detached
}

// Close flushes whatever is still pending
func (s *Session) Close() {
	s.Flush()
}
