package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cipr/storefront/internal/backend"
	"github.com/cipr/storefront/internal/domain"
	"github.com/cipr/storefront/internal/repository"
	apperrors "github.com/cipr/storefront/pkg/errors"
	"github.com/cipr/storefront/pkg/validator"
)

// SessionBackend is the slice of the backend client the session service uses.
type SessionBackend interface {
	FetchUser(ctx context.Context) (backend.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, fields map[string]any) error
	Logout(ctx context.Context) error
}

// LoginInput holds the credentials for a login attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput holds the fields for an account registration.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// AuthListener is notified after every authenticated/unauthenticated
// transition. The cart service registers one to fetch or clear itself.
type AuthListener func(ctx context.Context, authenticated bool)

// SessionService owns the token slot and the resolved user. A token that
// cannot be resolved to a user is not a valid token: any resolution
// failure clears both, never leaving a token-present user-absent state.
type SessionService struct {
	backend   SessionBackend
	store     repository.SessionStore
	token     *backend.BearerToken
	notifier  Notifier
	logger    *slog.Logger
	sessionID string

	mu        sync.RWMutex
	user      *domain.User
	listeners []AuthListener
}

// NewSessionService creates a session service around the shared token slot.
// sessionID keys the durable token in the session store.
func NewSessionService(b SessionBackend, store repository.SessionStore, token *backend.BearerToken, notifier Notifier, logger *slog.Logger, sessionID string) *SessionService {
	return &SessionService{
		backend:   b,
		store:     store,
		token:     token,
		notifier:  notifier,
		logger:    logger,
		sessionID: sessionID,
	}
}

// OnAuthChange registers a listener for auth transitions. Must be called
// during wiring, before the service handles requests.
func (s *SessionService) OnAuthChange(fn AuthListener) {
	s.listeners = append(s.listeners, fn)
}

// IsAuthenticated reports whether both a token and a resolved user are
// present. A token alone, before resolution completes, does not authorize
// anything.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Get() != "" && s.user != nil
}

// CurrentUser returns the resolved user, or an auth error when the session
// is not authenticated.
func (s *SessionService) CurrentUser() (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token.Get() == "" || s.user == nil {
		return domain.User{}, apperrors.Auth("no authenticated user")
	}
	return *s.user, nil
}

// Restore loads a previously persisted token and resolves it. Called once
// at startup; a missing or stale token leaves the session anonymous.
func (s *SessionService) Restore(ctx context.Context) {
	token, err := s.store.LoadToken(ctx, s.sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "session restore failed",
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if err := s.SetToken(ctx, token); err != nil {
		s.logger.InfoContext(ctx, "persisted token no longer valid",
			slog.String("error", err.Error()),
		)
	}
}

// SetToken installs a new token and resolves the user behind it. An empty
// token clears the session. Resolution failure of any kind clears both the
// token and the user.
func (s *SessionService) SetToken(ctx context.Context, token string) error {
	if token == "" {
		s.clearSession(ctx, false)
		return nil
	}

	s.token.Set(token)
	if err := s.store.SaveToken(ctx, s.sessionID, token); err != nil {
		s.logger.WarnContext(ctx, "token persist failed",
			slog.String("error", err.Error()),
		)
	}

	return s.ResolveUser(ctx)
}

// ResolveUser fetches the identity behind the current token. Failure is an
// auth failure: both token and user are cleared.
func (s *SessionService) ResolveUser(ctx context.Context) error {
	if s.token.Get() == "" {
		return apperrors.Auth("no token to resolve")
	}

	user, err := s.backend.FetchUser(ctx)
	if err != nil {
		s.logger.InfoContext(ctx, "user resolution failed, tearing down session",
			slog.String("error", err.Error()),
		)
		s.clearSession(ctx, true)
		return apperrors.Auth("token could not be resolved to a user")
	}

	s.mu.Lock()
	s.user = &domain.User{ID: user.ID, Name: user.Name, Email: user.Email}
	s.mu.Unlock()

	s.fireAuthChange(ctx, true)
	s.notifier.Notify(ctx, Notification{
		Kind:   NotifySessionStarted,
		Fields: map[string]any{"user_id": user.ID},
	})
	return nil
}

// Login exchanges credentials for a token and resolves the user.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return domain.User{}, err
	}

	token, err := s.backend.Login(ctx, input.Email, input.Password)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.SetToken(ctx, token); err != nil {
		return domain.User{}, err
	}
	return s.CurrentUser()
}

// Register creates an account. The caller logs in separately afterwards.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) error {
	if err := validator.Validate(input); err != nil {
		return err
	}

	return s.backend.Register(ctx, map[string]any{
		"name":                  input.Name,
		"email":                 input.Email,
		"password":              input.Password,
		"password_confirmation": input.PasswordConfirmation,
	})
}

// Logout invalidates the server-side session best-effort, then clears the
// local session unconditionally. Logout always succeeds locally.
func (s *SessionService) Logout(ctx context.Context) {
	if s.token.Get() != "" {
		if err := s.backend.Logout(ctx); err != nil {
			s.logger.WarnContext(ctx, "server-side logout failed",
				slog.String("error", err.Error()),
			)
		}
	}
	s.clearSession(ctx, false)
}

// clearSession drops the token and the user and notifies listeners.
// expired distinguishes a forced teardown from a deliberate logout.
func (s *SessionService) clearSession(ctx context.Context, expired bool) {
	s.token.Clear()
	if err := s.store.DeleteToken(ctx, s.sessionID); err != nil {
		s.logger.WarnContext(ctx, "token removal failed",
			slog.String("error", err.Error()),
		)
	}

	s.mu.Lock()
	hadUser := s.user != nil
	s.user = nil
	s.mu.Unlock()

	s.fireAuthChange(ctx, false)
	if expired && hadUser {
		s.notifier.Notify(ctx, Notification{Kind: NotifySessionExpired})
	}
}

func (s *SessionService) fireAuthChange(ctx context.Context, authenticated bool) {
	for _, fn := range s.listeners {
		fn(ctx, authenticated)
	}
}
