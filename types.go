package authgate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Name() string
	Email() string
	Role() string
}

// Authenticator holds methods to deal with authentication and the
// verification gate for protected operations
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, bearer string) (*AuthContext, error)
	Authorize(actx *AuthContext, roles ...UserRole) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetResetTokenDuration() time.Duration
	GetPasswordCost() int
	GetPasswordPolicy() PasswordPolicy
	GetRevealAccountAbsence() bool
	GetResetURLTemplate() string
}

// CredentialStore is the narrow contract the engine consumes. Email
// uniqueness is enforced by the store's insert path, not by a
// check-then-insert in the engine, so concurrent signups cannot race
// past the constraint.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
	UpdatePasswordFields(ctx context.Context, id uuid.UUID, fields PasswordFieldUpdate) error
}

// LoginTracker is an optional store extension used to throttle
// repeated failed logins.
type LoginTracker interface {
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// PasswordFieldUpdate describes a partial, atomic update of the
// password related columns. Nil pointers leave a column untouched.
// ClearResetToken removes hash and expiry in the same statement so the
// pair can never be half-cleared.
type PasswordFieldUpdate struct {
	PasswordHash      *string
	PasswordChangedAt *time.Time
	ResetTokenHash    *string
	ResetExpiresAt    *time.Time
	ClearResetToken   bool
}

// IdentityProvider ensure we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByID(ctx context.Context, id string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenService issues and validates the self-contained access tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(token string) (AuthClaims, error)
}

// Mailer delivers notifications, out of band of the engine. Send must
// honor context cancellation so a slow transport surfaces as a
// delivery failure instead of hanging the request.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Email is the message contract the engine hands the Mailer.
type Email struct {
	To      string
	Subject string
	Body    string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
