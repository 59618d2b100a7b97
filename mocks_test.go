package authgate_test

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	authgate "github.com/goliatone/go-authgate"
)

var errRecordNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// memStore is an in-memory CredentialStore with the same contract as
// the bun implementation: insert-time email uniqueness, partial atomic
// password field updates.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*authgate.User

	insertErr error
	lookupErr error
	updateErr error

	attemptTracked int
	successTracked int
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]*authgate.User{}}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*authgate.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	email = authgate.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, errRecordNotFound
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*authgate.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, errRecordNotFound
}

func (s *memStore) FindByResetTokenHash(_ context.Context, tokenHash string) (*authgate.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	for _, u := range s.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash {
			return cloneUser(u), nil
		}
	}
	return nil, errRecordNotFound
}

func (s *memStore) Insert(_ context.Context, user *authgate.User) (*authgate.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return nil, s.insertErr
	}

	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, authgate.ErrEmailTaken
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = &now

	s.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (s *memStore) UpdatePasswordFields(_ context.Context, id uuid.UUID, fields authgate.PasswordFieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return s.updateErr
	}

	u, ok := s.users[id]
	if !ok {
		return errRecordNotFound
	}

	if fields.PasswordHash != nil {
		u.PasswordHash = *fields.PasswordHash
	}
	if fields.PasswordChangedAt != nil {
		t := *fields.PasswordChangedAt
		u.PasswordChangedAt = &t
	}
	if fields.ClearResetToken {
		u.ResetTokenHash = nil
		u.ResetExpiresAt = nil
	} else {
		if fields.ResetTokenHash != nil {
			h := *fields.ResetTokenHash
			u.ResetTokenHash = &h
		}
		if fields.ResetExpiresAt != nil {
			t := *fields.ResetExpiresAt
			u.ResetExpiresAt = &t
		}
	}

	return nil
}

func (s *memStore) TrackAttemptedLogin(_ context.Context, user *authgate.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attemptTracked++
	if u, ok := s.users[user.ID]; ok {
		u.LoginAttempts++
		now := time.Now()
		u.LoginAttemptAt = &now
	}
	return nil
}

func (s *memStore) TrackSuccessfulLogin(_ context.Context, user *authgate.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.successTracked++
	if u, ok := s.users[user.ID]; ok {
		u.LoginAttempts = 0
		u.LoginAttemptAt = nil
		now := time.Now()
		u.LoggedInAt = &now
	}
	return nil
}

// get returns the stored record, not a clone, for assertions.
func (s *memStore) get(id uuid.UUID) *authgate.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func cloneUser(u *authgate.User) *authgate.User {
	c := *u
	return &c
}

func mustUUID(t interface{ Fatalf(string, ...any) }, s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}

// memMailer records deliveries and can be told to fail.
type memMailer struct {
	mu      sync.Mutex
	sent    []authgate.Email
	sendErr error
}

func (m *memMailer) Send(_ context.Context, em authgate.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, em)
	return nil
}

func (m *memMailer) deliveries() []authgate.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]authgate.Email(nil), m.sent...)
}

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
