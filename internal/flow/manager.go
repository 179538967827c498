package flow

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mvigneshwaran/health-assistant/internal/domain"
)

// Manager tracks the active sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
}

func NewManager(deps Deps) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
	}
}

// Create starts a new session in AwaitingProfile.
func (m *Manager) Create(lang domain.Language) *Session {
	sess := NewSession(uuid.NewString(), lang, m.deps)
	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()
	return sess
}

// Get resolves a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Remove drops a session, releasing any held capture resources. History
// is owned elsewhere and survives.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		sess.CancelRecording()
	}
}
