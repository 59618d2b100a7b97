package authgate

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes attached to structured errors so API clients can branch
// without parsing messages.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeIdentityGone       = "IDENTITY_GONE"
	TextCodePasswordChanged    = "PASSWORD_CHANGED"
	TextCodeInsufficientRole   = "INSUFFICIENT_ROLE"
	TextCodeEmailTaken         = "EMAIL_TAKEN"
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	TextCodeDeliveryFailed     = "DELIVERY_FAILED"
	TextCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	TextCodeTooManyAttempts    = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeMissingCredentials = "MISSING_CREDENTIALS"
)

// ErrMismatchedHashAndPassword is returned for both unknown emails and
// wrong passwords. The two causes must stay indistinguishable to the
// caller so the login endpoint cannot be used for account enumeration.
var ErrMismatchedHashAndPassword = errors.New("incorrect email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrMissingCredentials is returned when email or password is empty.
var ErrMissingCredentials = errors.New("please provide email and password", errors.CategoryValidation).
	WithTextCode(TextCodeMissingCredentials).
	WithCode(errors.CodeBadRequest)

// ErrNoAuthToken is returned when a protected operation receives no
// bearer credential at all.
var ErrNoAuthToken = errors.New("unauthorized access, please log in", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when the access token TTL has elapsed.
var ErrTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or
// signature verification.
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityGone is returned when a token verifies but its subject no
// longer resolves to a stored identity. Subjects are not deleted-safe,
// the check runs on every verification.
var ErrIdentityGone = errors.New("the user belonging to this token does no longer exist", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityGone).
	WithCode(errors.CodeUnauthorized)

// ErrPasswordChanged is returned when the subject changed their
// password at or after the token was issued. This is the sole
// revocation mechanism: no blacklist, the change invalidates every
// outstanding token at once.
var ErrPasswordChanged = errors.New("user recently changed password, please log in again", errors.CategoryAuth).
	WithTextCode(TextCodePasswordChanged).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientRole is returned by authorization checks for
// authenticated identities whose role is not in the allowed set.
var ErrInsufficientRole = errors.New("you do not have permission to perform this action", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrEmailTaken is returned when signup hits the store's unique email
// constraint.
var ErrEmailTaken = errors.New("email address is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrIdentityNotFound is returned by lookups that are allowed to
// reveal absence, e.g. the enumerable forgot-password response.
var ErrIdentityNotFound = errors.New("there is no user with that email address", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrResetTokenInvalid covers expired, consumed, and unknown reset
// tokens uniformly.
var ErrResetTokenInvalid = errors.New("password reset token is invalid or has expired", errors.CategoryValidation).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(errors.CodeBadRequest)

// ErrDeliveryFailed is returned when the mailer cannot be reached or
// rejects the message. The reset fields have been rolled back by the
// time the caller sees this error.
var ErrDeliveryFailed = errors.New("there was an error sending the email, try again later", errors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailed).
	WithCode(errors.CodeInternal)

// ErrStoreUnavailable wraps store timeouts and outages.
var ErrStoreUnavailable = errors.New("credential store is unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeStoreUnavailable).
	WithCode(errors.CodeInternal)

// ErrTooManyLoginAttempts is returned once an identity exceeds the
// attempt budget inside the cooldown window.
var ErrTooManyLoginAttempts = errors.New("too many login attempts, try again later", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(http.StatusTooManyRequests)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// StatusClass is the coarse classification that goes into structured
// error payloads: client faults are "fail", server faults are "error".
type StatusClass = string

const (
	StatusFail  StatusClass = "fail"
	StatusError StatusClass = "error"
)

// ClassifyStatus maps an HTTP status code to its payload status class.
func ClassifyStatus(code int) StatusClass {
	if code >= 400 && code < 500 {
		return StatusFail
	}
	return StatusError
}

// HTTPStatus resolves the status code carried by a structured error,
// defaulting to 500 for untagged failures.
func HTTPStatus(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return errors.CodeInternal
}

// IsTokenExpiredError will check for expired tokens, including legacy
// string-matched errors surfaced by JWT middleware.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
