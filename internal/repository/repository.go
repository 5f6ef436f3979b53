// Package repository defines the persistence ports for session state.
package repository

import "context"

// SessionStore persists bearer tokens across process restarts, keyed by
// browser session. Losing a token is recoverable (the session becomes
// anonymous), so implementations favour availability over durability.
type SessionStore interface {
	SaveToken(ctx context.Context, sessionID, token string) error
	LoadToken(ctx context.Context, sessionID string) (string, error)
	DeleteToken(ctx context.Context, sessionID string) error
}
