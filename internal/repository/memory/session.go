// Package memory provides an in-process SessionStore for deployments that
// run without Redis. Tokens do not survive a restart.
package memory

import (
	"context"
	"sync"

	apperrors "github.com/cipr/storefront/pkg/errors"
)

// SessionStore is a map-backed repository.SessionStore.
type SessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{tokens: make(map[string]string)}
}

func (s *SessionStore) SaveToken(_ context.Context, sessionID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
	return nil
}

func (s *SessionStore) LoadToken(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[sessionID]
	if !ok {
		return "", apperrors.NotFound("session token", sessionID)
	}
	return token, nil
}

func (s *SessionStore) DeleteToken(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}
