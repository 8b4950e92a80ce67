package api

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schemebot/schemebot/internal/flow"
)

// Session registry errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session binds one conversation flow to an identifier and a language
// preference. The mutex serializes message processing per session.
type Session struct {
	ID       string
	Language string
	Flow     *flow.Flow

	mu sync.Mutex
}

// Lock acquires the session for exclusive flow access.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionRegistry tracks active conversation sessions and expires inactive
// ones on access.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	newFlow  func() *flow.Flow
}

// NewSessionRegistry creates a registry that builds flows with newFlow and
// expires sessions after timeout of inactivity.
func NewSessionRegistry(newFlow func() *flow.Flow, timeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		newFlow:  newFlow,
	}
}

// Create starts a new session with the given language preference.
func (r *SessionRegistry) Create(language string) *Session {
	session := &Session{
		ID:       uuid.NewString(),
		Language: language,
		Flow:     r.newFlow(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	slog.Info("SessionRegistry.Create: session created", "session_id", session.ID, "language", language)
	return session
}

// Get looks up a session by ID. Expired sessions are removed and reported
// as ErrSessionExpired.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Flow.IsExpired(r.timeout) {
		delete(r.sessions, id)
		slog.Info("SessionRegistry.Get: session expired", "session_id", id)
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Remove deletes a session from the registry.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports the number of tracked sessions, including any not yet swept.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
