// Package session tracks volatile per-user dialogue state.
package session

import (
	"sync"

	"github.com/alkaman93/orgazm/internal/domain"
)

// Manager holds one Session per user identity, created lazily. Sessions are
// in-process only; mid-dialogue progress does not survive a restart.
//
// The map is guarded by a mutex; the Session values themselves are safe to
// mutate without one because the dispatcher never runs two events for the
// same identity concurrently.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*domain.Session)}
}

// Get returns the session for a user, creating an idle one if needed.
func (m *Manager) Get(userID int64) *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &domain.Session{UserID: userID}
		m.sessions[userID] = s
	}
	return s
}

// Reset discards any in-progress dialogue for the user. The session itself
// is kept; only dialogue state and collected fields are cleared.
func (m *Manager) Reset(userID int64) {
	m.Get(userID).Clear()
}
