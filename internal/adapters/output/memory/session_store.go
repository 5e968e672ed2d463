package memory

import (
	"sync"
	"time"

	"appliancebot/internal/domain"
	"appliancebot/internal/ports/output"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory session storage
// Uses sync.Map for thread-safe concurrent access to conversation sessions.
// Stores session configuration for timeout and maxTurns to be used when creating new sessions.
type MemorySessionStore struct {
	sessions sync.Map
	timeout  time.Duration
	maxTurns int
}

// NewMemorySessionStore creates a new in-memory session store with configurable session parameters.
// timeout: Duration after which sessions expire
// maxTurns: Maximum number of conversation turns to retain in session history
func NewMemorySessionStore(timeout time.Duration, maxTurns int) *MemorySessionStore {
	return &MemorySessionStore{
		timeout:  timeout,
		maxTurns: maxTurns,
	}
}

// GetTimeout returns the configured session timeout duration.
func (m *MemorySessionStore) GetTimeout() time.Duration {
	return m.timeout
}

// GetMaxTurns returns the configured maximum conversation turns.
func (m *MemorySessionStore) GetMaxTurns() int {
	return m.maxTurns
}

// GetSession retrieves a conversation session by session ID.
// Returns the session if found and not expired, or nil if the session
// does not exist or has expired. Expired sessions are deleted (lazy cleanup).
// LastAccessTime is updated for valid sessions.
func (m *MemorySessionStore) GetSession(sessionID string) (*domain.ConversationSession, error) {
	value, exists := m.sessions.Load(sessionID)
	if !exists {
		return nil, nil
	}

	session, ok := value.(*domain.ConversationSession)
	if !ok {
		// If data is malformed, delete and return nil
		m.sessions.Delete(sessionID)
		return nil, nil
	}

	// Check if session is expired
	if session.IsExpired() {
		// Lazy cleanup: delete expired session
		m.sessions.Delete(sessionID)
		return nil, nil
	}

	// Update LastAccessTime for valid session
	session.LastAccessTime = time.Now()

	return session, nil
}

// UpdateSession creates or updates a conversation session.
// The session's LastAccessTime is updated to the current time before storing.
func (m *MemorySessionStore) UpdateSession(session *domain.ConversationSession) error {
	session.LastAccessTime = time.Now()

	m.sessions.Store(session.ID, session)

	return nil
}

// DeleteSession removes a conversation session by session ID.
// This operation is idempotent - deleting a non-existent session does not return an error.
func (m *MemorySessionStore) DeleteSession(sessionID string) error {
	m.sessions.Delete(sessionID)
	return nil
}
