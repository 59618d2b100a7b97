package authgate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// MaxLoginAttempts is the maximum number of failed attempts an
// identity gets inside a cooldown period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// UserProvider resolves identities against a CredentialStore. Both an
// unknown email and a wrong password surface as the same error so the
// caller cannot tell the two apart.
type UserProvider struct {
	store     CredentialStore
	hasher    PasswordAuthenticator
	Validator func(*User) error
	logger    Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store CredentialStore, hasher PasswordAuthenticator) *UserProvider {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultPasswordCost)
	}
	return &UserProvider{
		store:     store,
		hasher:    hasher,
		logger:    defLogger{},
		Validator: defaultValidator,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

func (u *UserProvider) validate(user *User) error {
	if u.Validator != nil {
		return u.Validator(user)
	}
	return defaultValidator(user)
}

// VerifyIdentity will find the user, compare the password, and return
// the identity
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// too many attempts in the window, cool off
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := u.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if tracker, ok := u.store.(LoginTracker); ok {
			if err2 := tracker.TrackAttemptedLogin(ctx, user); err2 != nil {
				return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
			}
		}

		return nil, ErrMismatchedHashAndPassword
	}

	// reset the login_attempts counter and login_attempt_at
	if tracker, ok := u.store.(LoginTracker); ok {
		if err := tracker.TrackSuccessfulLogin(ctx, user); err != nil {
			u.logger.Error("failed to track successful login", "error", err)
		}
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return AsIdentity(user), nil
}

// FindIdentityByID resolves a token subject back to a stored identity.
func (u *UserProvider) FindIdentityByID(ctx context.Context, id string) (Identity, error) {
	user, err := u.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return AsIdentity(user), nil
}

// FindUserByID returns the full record for a token subject. Callers on
// the verification path need the password timestamps, not just the
// Identity surface.
func (u *UserProvider) FindUserByID(ctx context.Context, id string) (*User, error) {
	uid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}

	user, err := u.store.FindByID(ctx, uid)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityGone
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user by id")
	}

	if user == nil {
		return nil, ErrIdentityGone
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return user, nil
}

func defaultValidator(u *User) error {
	switch u.Role {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return errors.New("user has an unknown or invalid role", errors.CategoryAuth).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": u.Role, "user_id": u.ID.String()})
	}
}
