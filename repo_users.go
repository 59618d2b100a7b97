package authgate

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// BunCredentialStore is the reference CredentialStore implementation.
// Uniqueness lives in the email column constraint: a duplicate signup
// fails at insert time, there is no check-then-insert window.
type BunCredentialStore struct {
	repo repository.Repository[*User]
	db   *bun.DB
}

var (
	_ CredentialStore = (*BunCredentialStore)(nil)
	_ LoginTracker    = (*BunCredentialStore)(nil)
)

// NewBunCredentialStore wraps an existing bun handle.
func NewBunCredentialStore(db *bun.DB) *BunCredentialStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &BunCredentialStore{repo: repo, db: db}
}

// OpenSQLite opens a sqlite-backed store, mostly for development and
// tests. Production deployments hand NewBunCredentialStore their own
// *bun.DB.
func OpenSQLite(dsn string) (*BunCredentialStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open sqlite database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	return NewBunCredentialStore(db), nil
}

// DB exposes the underlying handle.
func (s *BunCredentialStore) DB() *bun.DB {
	return s.db
}

// CreateSchema creates the users table when it does not exist yet.
func (s *BunCredentialStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users schema")
	}
	return nil
}

func (s *BunCredentialStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.db.NewSelect().
		Model(user).
		Where("email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to find user by email")
	}
	return user, nil
}

func (s *BunCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user := &User{}
	err := s.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to find user by id")
	}
	return user, nil
}

func (s *BunCredentialStore) FindByResetTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	user := &User{}
	err := s.db.NewSelect().
		Model(user).
		Where("reset_token_hash = ?", tokenHash).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, s.mapLookupError(err, "failed to find user by reset token")
	}
	return user, nil
}

func (s *BunCredentialStore) Insert(ctx context.Context, user *User) (*User, error) {
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert user")
	}
	return created, nil
}

// UpdatePasswordFields applies a partial update of the password
// columns in a single statement. Concurrent resets are last write
// wins: the later pair fully replaces the earlier one, never a hash
// without its expiry.
func (s *BunCredentialStore) UpdatePasswordFields(ctx context.Context, id uuid.UUID, fields PasswordFieldUpdate) error {
	q := s.db.NewUpdate().
		Model((*User)(nil)).
		Where("id = ?", id)

	touched := false

	if fields.PasswordHash != nil {
		q = q.Set("password_hash = ?", *fields.PasswordHash)
		touched = true
	}
	if fields.PasswordChangedAt != nil {
		q = q.Set("password_changed_at = ?", *fields.PasswordChangedAt)
		touched = true
	}
	if fields.ClearResetToken {
		q = q.Set("reset_token_hash = NULL").Set("reset_expires_at = NULL")
		touched = true
	} else {
		if fields.ResetTokenHash != nil {
			q = q.Set("reset_token_hash = ?", *fields.ResetTokenHash)
			touched = true
		}
		if fields.ResetExpiresAt != nil {
			q = q.Set("reset_expires_at = ?", *fields.ResetExpiresAt)
			touched = true
		}
	}

	if !touched {
		return nil
	}

	q = q.Set("updated_at = ?", time.Now())

	res, err := q.Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password fields")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return goerrors.New("user not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}

	return nil
}

// TrackAttemptedLogin increments the attempt counter and stamps the
// attempt time.
func (s *BunCredentialStore) TrackAttemptedLogin(ctx context.Context, user *User) error {
	_, err := s.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = login_attempts + 1").
		Set("login_attempt_at = ?", time.Now()).
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login attempt")
	}
	return nil
}

// TrackSuccessfulLogin clears the attempt counter and stamps the
// login time.
func (s *BunCredentialStore) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	_, err := s.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = 0").
		Set("login_attempt_at = NULL").
		Set("loggedin_at = ?", time.Now()).
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track successful login")
	}
	return nil
}

func (s *BunCredentialStore) mapLookupError(err error, msg string) error {
	if goerrors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
		return goerrors.New("record not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}
	if goerrors.Is(err, context.DeadlineExceeded) || goerrors.Is(err, context.Canceled) {
		return ErrStoreUnavailable
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
