package editor

import (
	"context"
	"sync"
	"time"

	"product-tour-builder/internal/domain"
)

// Loader pulls the current draft state when a session opens
type Loader interface {
	GetTour(ctx context.Context, id uint64) (*domain.Tour, error)
	ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error)
	ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error)
}

// Manager owns the open editing sessions, one per tour. The tree is
// owned by a single active session; there is no multi-editor locking.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint64]*Session

	loader   Loader
	store    Store
	debounce time.Duration
}

func NewManager(loader Loader, store Store, debounce time.Duration) *Manager {
	return &Manager{
		sessions: make(map[uint64]*Session),
		loader:   loader,
		store:    store,
		debounce: debounce,
	}
}

// Open loads the draft content into a fresh session, replacing any
// previous session for the tour (its pending edits are flushed first).
func (m *Manager) Open(ctx context.Context, tourID uint64) (*Session, error) {
	tour, err := m.loader.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	screens, err := m.loader.ListScreens(ctx, tourID)
	if err != nil {
		return nil, err
	}
	steps, err := m.loader.ListSteps(ctx, tourID)
	if err != nil {
		return nil, err
	}

	session := NewSession(&Tree{
		Tour:    *tour,
		Screens: screens,
		Steps:   steps,
	}, m.store, m.debounce)

	m.mu.Lock()
	old := m.sessions[tourID]
	m.sessions[tourID] = session
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}

	return session, nil
}

// Get returns the open session for a tour, or nil
func (m *Manager) Get(tourID uint64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[tourID]
}

// ClearDirty resets the unpublished-changes flag after a publish
func (m *Manager) ClearDirty(tourID uint64) {
	if session := m.Get(tourID); session != nil {
		session.ClearDirty()
	}
}

// Shutdown flushes every open session
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[uint64]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
