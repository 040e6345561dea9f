package application

import "sync"

// SessionStore keeps each agent's most recent task target type so a
// follow-up "more accounts" request needs no task parameter.
type SessionStore struct {
	mu    sync.Mutex
	types map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{types: map[string]string{}}
}

func (s *SessionStore) Set(agentID, targetType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.types[agentID] = targetType
}

func (s *SessionStore) Get(agentID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetType, ok := s.types[agentID]
	return targetType, ok
}
