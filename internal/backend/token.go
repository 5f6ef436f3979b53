package backend

import "sync"

// BearerToken is the shared token slot. The session service writes it, the
// HTTP client reads it on every authenticated request. It is the only piece
// of state shared between the two, which keeps the dependency between them
// one-directional.
type BearerToken struct {
	mu    sync.RWMutex
	value string
}

// Get returns the current token, or "" when unauthenticated.
func (t *BearerToken) Get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set stores a new token value. An empty value clears the slot.
func (t *BearerToken) Set(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
}

// Clear empties the token slot.
func (t *BearerToken) Clear() {
	t.Set("")
}
