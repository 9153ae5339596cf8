package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Error types for session management.
var (
	// ErrMaxSessionsReached is returned when the maximum session limit is reached.
	ErrMaxSessionsReached = errors.New("maximum session limit reached")

	// ErrManagerStopped is returned when operations are attempted on a stopped manager.
	ErrManagerStopped = errors.New("session manager is stopped")
)

// ManagerConfig configures the session manager.
type ManagerConfig struct {
	// MaxSessions caps the number of open sessions. Zero means no limit.
	MaxSessions int
}

// Manager owns sessions by id. Sessions are opened on first use with the
// manager's factory and options.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  AppFactory
	opts     []Option
	config   ManagerConfig
	logger   *slog.Logger
	stopped  bool
}

// NewManager creates a manager that builds apps with factory. opts are
// applied to every session it opens.
func NewManager(factory AppFactory, config ManagerConfig, opts ...Option) *Manager {
	o := buildOptions(opts)
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		opts:     opts,
		config:   config,
		logger:   o.logger,
	}
}

// Get returns the session for id, opening it if needed.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	stopped := m.stopped
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if stopped {
		return nil, ErrManagerStopped
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check after acquiring write lock
	if m.stopped {
		return nil, ErrManagerStopped
	}
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		return nil, ErrMaxSessionsReached
	}

	s, err := Open(ctx, id, m.factory, m.opts...)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = s
	m.logger.Info("session opened", "session", id, "sessions", len(m.sessions))
	return s, nil
}

// Lookup returns the session for id without opening it.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close closes and forgets the session for id.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	m.logger.Info("session closed", "session", id)
	return s.Close()
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session and rejects further Gets.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.stopped = true
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.logger.Info("session manager stopped", "closed", len(sessions))
}
