package identity

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/partyup/partyup/internal/dependencies/clock"
	"github.com/partyup/partyup/internal/dependencies/random"
	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/storage"
)

// Errors
var (
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidDisplayName = errors.New("display name must be between 3 and 128 characters")
)

// Display name length limits, in runes
const (
	MinNameLength = 3
	MaxNameLength = 128
)

const sessionTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const sessionTokenLength = 32

// Session represents a logged-in user
type Session struct {
	Token     string
	UserID    model.UserID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles registration and session management.
//
// Registration is name-only: there are no credentials, a user is whoever
// holds the session cookie.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the identity service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new identity service
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		random:          random,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// ValidateName checks display name length limits
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength || n > MaxNameLength {
		return ErrInvalidDisplayName
	}
	return nil
}

// Register creates a new user with the given display name and logs them in
func (s *Service) Register(ctx context.Context, displayName string) (*Session, error) {
	if err := ValidateName(displayName); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        model.UserID(uuid.NewString()),
		Name:      displayName,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	return s.createSession(user.ID), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetUser returns the user for a session token
func (s *Service) GetUser(ctx context.Context, token string) (*model.User, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return s.storage.GetUser(ctx, session.UserID)
}

// Touch records activity for a user
func (s *Service) Touch(ctx context.Context, userID model.UserID) error {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	user.LastSeen = s.clock.Now()
	return s.storage.SaveUser(ctx, user)
}

func (s *Service) createSession(userID model.UserID) *Session {
	token := s.random.String(sessionTokenLength, sessionTokenAlphabet)
	now := s.clock.Now()

	session := &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
