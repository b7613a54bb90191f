package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/husseinbouik/taskman/internal/models"
)

// ErrAuthFailed indicates a login was rejected or never reached the
// backend. The previous session, if any, is left untouched.
var ErrAuthFailed = errors.New("authentication failed")

// Durable session slots. Fixed keys so a session survives a restart.
const (
	tokenKey = "session_token"
	userKey  = "session_user"
)

// Storage is the durable slot store backing the session across
// restarts. *db.DB satisfies this.
type Storage interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// Authenticator exchanges credentials for a session. *api.Client
// satisfies this.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.Session, error)
}

// Store holds the current session in memory, mirrors it to durable
// storage, and notifies subscribers on every change. It is the single
// owner of authentication state; API clients read the token through
// Token().
type Store struct {
	mu      sync.RWMutex
	auth    Authenticator
	storage Storage
	current *models.Session
	subs    []func(*models.Session)
}

// NewStore creates a store initialized from durable storage. A partial
// slot pair (token without user or vice versa) is discarded: token and
// user are set and cleared together.
func NewStore(auth Authenticator, storage Storage) (*Store, error) {
	s := &Store{auth: auth, storage: storage}

	token, err := storage.GetSetting(tokenKey)
	if err != nil {
		return nil, fmt.Errorf("reading session token: %w", err)
	}
	userJSON, err := storage.GetSetting(userKey)
	if err != nil {
		return nil, fmt.Errorf("reading session user: %w", err)
	}

	if token != "" && userJSON != "" {
		var user models.User
		if err := json.Unmarshal([]byte(userJSON), &user); err == nil {
			s.current = &models.Session{Token: token, User: user}
		}
	}
	if s.current == nil {
		// Clean out any half-written pair
		_ = storage.DeleteSetting(tokenKey)
		_ = storage.DeleteSetting(userKey)
	}

	return s, nil
}

// Login authenticates against the backend and, on success, stores the
// session in memory and in durable storage. On failure the prior
// session is untouched and ErrAuthFailed is returned.
func (s *Store) Login(ctx context.Context, username, password string) (*models.Session, error) {
	sess, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if sess.Token == "" {
		return nil, fmt.Errorf("%w: backend returned no token", ErrAuthFailed)
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return nil, fmt.Errorf("encoding session user: %w", err)
	}
	if err := s.storage.SetSetting(tokenKey, sess.Token); err != nil {
		return nil, fmt.Errorf("persisting session token: %w", err)
	}
	if err := s.storage.SetSetting(userKey, string(userJSON)); err != nil {
		return nil, fmt.Errorf("persisting session user: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.notify()

	return sess, nil
}

// Logout clears in-memory and durable state unconditionally. Calling
// it without a session is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	_ = s.storage.DeleteSetting(tokenKey)
	_ = s.storage.DeleteSetting(userKey)

	if had {
		s.notify()
	}
}

// Invalidate drops the session after the backend rejected its token.
// Identical to Logout; kept separate so call sites read as what they
// mean.
func (s *Store) Invalidate() {
	s.Logout()
}

// Current returns the active session, or nil when logged out.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token for outgoing calls, or "" when no
// session exists. Implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Subscribe registers fn to be called with the new session (nil on
// logout) after every state change.
func (s *Store) Subscribe(fn func(*models.Session)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	current := s.current
	subs := make([]func(*models.Session), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(current)
	}
}
