package revision

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// SessionManager is an in-memory registry of live revision sessions. Sessions
// are ephemeral: a process restart loses them, and the review records they
// already appended remain the durable record of the work done.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	logger   *slog.Logger
}

// NewSessionManager creates an empty session registry.
func NewSessionManager(logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionManager{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger.With(slog.String("component", "session_manager")),
	}
}

// Add registers a session under its ID.
func (m *SessionManager) Add(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID()] = session
	m.logger.Debug("session registered",
		slog.String("session_id", session.ID().String()),
		slog.String("student_id", session.StudentID().String()))
}

// Get retrieves a student's session by ID. A session owned by a different
// student reads as not found.
func (m *SessionManager) Get(sessionID, studentID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok || session.StudentID() != studentID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops a session from the registry. Removing an unknown ID is a
// no-op.
func (m *SessionManager) Remove(sessionID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
}
