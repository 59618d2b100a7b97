package authgate

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// Auther is the auth session engine. It is stateless per request: the
// signing key and configuration are read-only after construction, all
// durable state lives in the CredentialStore.
type Auther struct {
	provider     *UserProvider
	signingKey   []byte
	authScheme   string
	logger       Logger
	tokenService TokenService
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider *UserProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	scheme := opts.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Auther{
		provider:     provider,
		signingKey:   []byte(opts.GetSigningKey()),
		authScheme:   scheme,
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the codec, mostly useful in tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and issues a fresh access token. The
// identity record is not mutated on success; concurrent logins each
// get their own independently valid token.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", ErrMissingCredentials
	}

	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return "", err
	}

	return token, nil
}

// Authenticate is the verification gate for protected operations. The
// four checks run in order, each one a possible early rejection:
// bearer extraction, signature and TTL, subject resolution, and the
// password-change side check. The last one is the only revocation
// mechanism: a password change invalidates every token issued at or
// before it, with no blacklist.
func (s *Auther) Authenticate(ctx context.Context, bearer string) (*AuthContext, error) {
	raw, err := ExtractBearerToken(bearer, s.authScheme)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("Authenticate token validation failed", "error", err)
		return nil, err
	}

	user, err := s.provider.FindUserByID(ctx, claims.Subject())
	if err != nil {
		s.logger.Error("Authenticate subject resolution failed", "error", err)
		return nil, err
	}

	if user.PasswordChangedAfter(claims.IssuedAt()) {
		return nil, ErrPasswordChanged
	}

	return NewAuthContext(user, claims), nil
}

// Authorize is the restrictTo predicate: pure set membership over the
// closed role enum, valid only on a context produced by Authenticate.
func (s *Auther) Authorize(actx *AuthContext, roles ...UserRole) error {
	return Authorize(actx, roles...)
}

// Authorize checks the resolved identity's role against the allowed
// set.
func Authorize(actx *AuthContext, roles ...UserRole) error {
	if actx == nil || actx.User() == nil {
		return errors.New("authorization requires a verified auth context", errors.CategoryInternal)
	}

	if !RoleIn(actx.Role(), roles...) {
		return ErrInsufficientRole
	}

	return nil
}

// ExtractBearerToken pulls the raw token out of a bearer-style
// credential. An empty credential or a wrong scheme is an
// authentication failure, not a parse error.
func ExtractBearerToken(header, scheme string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNoAuthToken
	}

	if scheme == "" {
		return header, nil
	}

	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrNoAuthToken
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrNoAuthToken
	}

	return token, nil
}
