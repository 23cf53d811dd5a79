package playback

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Viewers close tabs without calling the end-session route, so idle
// sessions are swept instead of trusted to clean up after themselves.
const sessionTTL = 30 * time.Minute

type sessionEntry struct {
	engine  *Engine
	touched time.Time
}

// Registry holds live playback sessions keyed by an opaque id. Engines
// are single-viewer, so each call locks the registry only long enough
// to look the engine up; transitions themselves run outside the lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRegistry() *Registry {
	r := &Registry{
		sessions: make(map[string]*sessionEntry),
		stop:     make(chan struct{}),
	}
	go r.sweep()
	return r
}

func (r *Registry) Create(engine *Engine) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = &sessionEntry{engine: engine, touched: time.Now()}
	r.mu.Unlock()
	return id
}

// Get refreshes the idle clock, so a session only expires after
// sessionTTL without any input.
func (r *Registry) Get(id string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	entry.touched = time.Now()
	return entry.engine, true
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Close stops the background sweeper.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(sessionTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.evictStale(time.Now())
		case <-r.stop:
			return
		}
	}
}

func (r *Registry) evictStale(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.sessions {
		if now.Sub(entry.touched) > sessionTTL {
			delete(r.sessions, id)
		}
	}
}
