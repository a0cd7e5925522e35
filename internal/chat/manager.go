package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saudedigital/saude/internal/triage"
)

// Manager is the registry of live sessions. Sessions are kept in memory
// only and are evicted after IdleTimeout without activity.
type Manager struct {
	engine      *triage.Engine
	opts        []Option
	logger      *zap.Logger
	now         func() time.Time
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager whose sessions are built with opts. An
// idleTimeout of zero disables eviction.
func NewManager(engine *triage.Engine, idleTimeout time.Duration, opts ...Option) *Manager {
	cfg := buildSettings(opts)
	return &Manager{
		engine:      engine,
		opts:        opts,
		logger:      cfg.logger,
		now:         cfg.now,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*Session),
	}
}

// Engine returns the triage engine shared by all sessions.
func (m *Manager) Engine() *triage.Engine { return m.engine }

// Create starts and registers a new session.
func (m *Manager) Create() *Session {
	s := NewSession(m.engine, m.opts...)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", s.ID()), zap.Int("active", n))
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close closes and forgets a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	s.Close()
	return nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Pending is the number of replies still owed across all sessions.
func (m *Manager) Pending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		n += s.Pending()
	}
	return n
}

// Sweep closes sessions idle for longer than the idle timeout, returning
// how many were evicted. Sessions with a reply pending or a subscriber
// attached (an open widget) are never idle.
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	now := m.now()

	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.idleTimeout && s.Pending() == 0 && s.Subscribers() == 0 {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.logger.Info("evicted idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
