package assistant

import (
	"sync"

	"github.com/jobh/imoveis/pkg/clients/openrouter"
)

// HistoryLimit is the number of past messages replayed to the model.
const HistoryLimit = 5

// SessionManager keeps the recent conversation of each session.
type SessionManager struct {
	sessions map[string][]openrouter.Message
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string][]openrouter.Message),
	}
}

// History returns a copy of the last messages of a session.
func (sm *SessionManager) History(sessionID string) []openrouter.Message {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	history := sm.sessions[sessionID]
	out := make([]openrouter.Message, len(history))
	copy(out, history)
	return out
}

// Append records messages, keeping only the last HistoryLimit. An empty id keeps nothing.
func (sm *SessionManager) Append(sessionID string, messages ...openrouter.Message) {
	if sessionID == "" {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	history := append(sm.sessions[sessionID], messages...)
	if len(history) > HistoryLimit {
		history = append([]openrouter.Message(nil), history[len(history)-HistoryLimit:]...)
	}
	sm.sessions[sessionID] = history
}

// Clear removes a session.
func (sm *SessionManager) Clear(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, sessionID)
}
