package session

import (
	"errors"
	"sync"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

// ErrNotLive means no live session exists for the requested game.
var ErrNotLive = errors.New("game is not live")

// Registry maps game ids to their live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     func(id string) Options
}

// NewRegistry builds an empty registry; opts supplies per-game session options.
func NewRegistry(opts func(id string) Options) *Registry {
	if opts == nil {
		opts = func(string) Options { return Options{} }
	}
	return &Registry{sessions: make(map[string]*Session), opts: opts}
}

// Open returns the live session of g.ID, creating it from g when absent.
func (r *Registry) Open(g model.Game) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[g.ID]; ok {
		return s
	}
	s := New(g, r.opts(g.ID))
	r.sessions[g.ID] = s
	return s
}

// Get looks up a live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotLive
	}
	return s, nil
}

// Close tears down and forgets the session of id, if any.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll tears down every live session and returns them. Their snapshots
// stay readable and no longer change.
func (r *Registry) CloseAll() []*Session {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	out := make([]*Session, 0, len(all))
	for _, s := range all {
		s.Close()
		out = append(out, s)
	}
	return out
}

// Sessions returns the live sessions in no particular order.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
