package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Authenticator performs the login exchange with the auth endpoint.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error)
}

// AuthStore owns the current session. Session changes are all-or-nothing.
type AuthStore struct {
	mu      sync.RWMutex
	session domain.Session
	kv      storage.KV
	auth    Authenticator
	logger  *slog.Logger
}

// NewAuthStore creates an anonymous auth store. Call Load to rehydrate.
func NewAuthStore(kv storage.KV, auth Authenticator, logger *slog.Logger) *AuthStore {
	return &AuthStore{kv: kv, auth: auth, logger: logger}
}

// Load restores the stored session. A missing token or email means anonymous.
func (s *AuthStore) Load(ctx context.Context) error {
	token, err := s.read(ctx, TokenKey)
	if err != nil {
		return err
	}
	email, err := s.read(ctx, EmailKey)
	if err != nil {
		return err
	}
	role, err := s.read(ctx, RoleKey)
	if err != nil {
		return err
	}

	next := domain.Session{}
	if token != "" && email != "" {
		next = domain.Session{Token: token, Email: email, Role: role}
	} else if token != "" || email != "" {
		s.logger.WarnContext(ctx, "ignoring partial stored session")
	}

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()
	return nil
}

func (s *AuthStore) read(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

// Session returns the current session.
func (s *AuthStore) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token returns the current bearer token, or "" when anonymous.
func (s *AuthStore) Token() string {
	return s.Session().Token
}

// Login exchanges credentials for a session. The endpoint call happens
// without holding the store lock, so readers keep seeing the previous
// session until the new one is written. When calls overlap, the last one
// to complete wins.
func (s *AuthStore) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := validator.Validate(creds); err != nil {
		return domain.Session{}, apperrors.InvalidInput(err.Error())
	}

	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		loginsTotal.WithLabelValues("error").Inc()
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	if resp == nil || resp.SessionToken() == "" {
		loginsTotal.WithLabelValues("no_token").Inc()
		return domain.Session{}, apperrors.AuthFailed("no token returned")
	}

	next := resp.NewSession(creds)

	s.mu.Lock()
	s.session = next
	s.persist(ctx, next)
	s.mu.Unlock()

	loginsTotal.WithLabelValues("ok").Inc()
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "logged in",
		slog.String("email", next.Email),
		slog.Bool("admin", next.IsAdmin()),
	)
	return next, nil
}

// Logout forgets the session in memory and in storage.
func (s *AuthStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = domain.Session{}
	s.persist(ctx, s.session)
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "logged out")
}

// persist mirrors sess into storage. Must be called with s.mu held.
//
// The token is removed first and written last, so a stored token is never
// paired with another user's email.
func (s *AuthStore) persist(ctx context.Context, sess domain.Session) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithContext(ctx, s.logger)

	if err := s.kv.Delete(ctx, TokenKey); err != nil {
		s.persistFailed(ctx, log, TokenKey, err)
		if sess.Token != "" {
			return
		}
	}

	ok := true
	for _, w := range []struct {
		key   string
		value string
	}{
		{EmailKey, sess.Email},
		{RoleKey, sess.Role},
	} {
		if err := s.write(ctx, w.key, w.value); err != nil {
			s.persistFailed(ctx, log, w.key, err)
			ok = false
		}
	}

	if sess.Token == "" || !ok {
		return
	}
	if err := s.kv.Set(ctx, TokenKey, sess.Token); err != nil {
		s.persistFailed(ctx, log, TokenKey, err)
	}
}

// write stores value under key, deleting the key for an empty value.
func (s *AuthStore) write(ctx context.Context, key, value string) error {
	if value == "" {
		return s.kv.Delete(ctx, key)
	}
	return s.kv.Set(ctx, key, value)
}

func (s *AuthStore) persistFailed(ctx context.Context, log *slog.Logger, key string, err error) {
	persistFailuresTotal.WithLabelValues("auth").Inc()
	log.ErrorContext(ctx, "failed to persist session",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}
