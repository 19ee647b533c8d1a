package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the session for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, credential string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if credential == "" {
		return ErrEmptyCredential
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &Session{Credential: credential, CreatedAt: s.now().UTC()}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, ErrNoSession
	}
	return *s.session, nil
}
