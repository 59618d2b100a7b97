package authgate

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the least privileged role and the signup default
	RoleUser UserRole = "user"
	// RoleAdmin can manage other identities and restricted resources
	RoleAdmin UserRole = "admin"
)

// User is the durable identity record
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID    uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name  string    `bun:"name,notnull" json:"name,omitempty"`
	Email string    `bun:"email,notnull,unique" json:"email,omitempty"`
	Role  UserRole  `bun:"user_role,notnull" json:"user_role,omitempty"`

	// PasswordHash is never serialized. The reset pair exists together
	// or not at all.
	PasswordHash      string     `bun:"password_hash,notnull" json:"-"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`
	ResetTokenHash    *string    `bun:"reset_token_hash,nullzero" json:"-"`
	ResetExpiresAt    *time.Time `bun:"reset_expires_at,nullzero" json:"-"`
	LoginAttempts     int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt    *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt        *time.Time `bun:"loggedin_at,nullzero" json:"-"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NormalizeEmail lowercases and trims an email so lookups and the
// unique constraint see one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasLiveResetToken reports whether a reset pair is present and
// unexpired at the given instant.
func (u *User) HasLiveResetToken(now time.Time) bool {
	if u.ResetTokenHash == nil || u.ResetExpiresAt == nil {
		return false
	}
	return now.Before(*u.ResetExpiresAt)
}

// PasswordChangedAfter reports whether the password was mutated at or
// after the given issuance time. Token iat values carry second
// precision, the comparison truncates accordingly.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	changed := u.PasswordChangedAt.Truncate(time.Second)
	return !changed.Before(issuedAt.Truncate(time.Second))
}
