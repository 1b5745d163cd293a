package yetichat

import (
	"context"
	"sync"
)

var _ SessionStore = &MemorySessionStore{}

// MemorySessionStore keeps the local session for the lifetime of the process
type MemorySessionStore struct {
	mu      sync.RWMutex
	session *LocalSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load(_ context.Context) (*LocalSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *LocalSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session.clone()
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *LocalSession) clone() *LocalSession {
	if s == nil {
		return nil
	}
	c := *s
	c.User = s.User.Clone()
	return &c
}
