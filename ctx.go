package authgate

import (
	"context"
)

var authCtxKey = &contextKey{"auth_context"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the AuthContext in the given context
func WithContext(r context.Context, actx *AuthContext) context.Context {
	return context.WithValue(r, authCtxKey, actx)
}

// FromContext finds the AuthContext from the context.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	raw, ok := ctx.Value(authCtxKey).(*AuthContext)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// HasRole is a convenience check against the AuthContext carried in a
// standard context. Missing context means no.
func HasRole(ctx context.Context, role UserRole) bool {
	actx, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return actx.HasRole(role)
}
