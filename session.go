package authgate

import (
	"time"

	"github.com/google/uuid"
)

// AuthContext is the result of a successful verification: the resolved
// identity plus the token metadata it was verified against. It is what
// authorization and downstream handlers consume; it is never built
// from unverified input.
type AuthContext struct {
	user       *User
	claims     AuthClaims
	verifiedAt time.Time
}

// NewAuthContext pairs a resolved user with the claims that vouched
// for it.
func NewAuthContext(user *User, claims AuthClaims) *AuthContext {
	return &AuthContext{
		user:       user,
		claims:     claims,
		verifiedAt: time.Now(),
	}
}

// Identity returns the resolved identity.
func (a *AuthContext) Identity() Identity {
	return AsIdentity(a.user)
}

// User exposes the underlying record for handlers that need more than
// the Identity surface.
func (a *AuthContext) User() *User {
	return a.user
}

// Claims returns the verified token claims.
func (a *AuthContext) Claims() AuthClaims {
	return a.claims
}

// VerifiedAt reports when the verification gate ran.
func (a *AuthContext) VerifiedAt() time.Time {
	return a.verifiedAt
}

// UserUUID parses the subject into a uuid.
func (a *AuthContext) UserUUID() (uuid.UUID, error) {
	return a.user.ID, nil
}

// Role returns the stored role of the resolved identity, which wins
// over whatever role the token was minted with.
func (a *AuthContext) Role() UserRole {
	return a.user.Role
}

// HasRole checks if the resolved identity has a specific role
func (a *AuthContext) HasRole(role UserRole) bool {
	return a.user.Role == role
}

// IsAtLeast checks if the resolved identity's role meets the minimum
// required level
func (a *AuthContext) IsAtLeast(minRole UserRole) bool {
	return RoleIsAtLeast(a.user.Role, minRole)
}
