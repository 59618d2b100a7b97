package authgate

import "time"

// SimpleConfig is a plain struct implementation of Config. The signing
// key is injected once at startup and treated as immutable for the
// process lifetime.
type SimpleConfig struct {
	SigningKey           string
	SigningMethod        string
	ContextKey           string
	TokenExpiration      int
	AuthScheme           string
	Issuer               string
	Audience             []string
	ResetTokenDuration   time.Duration
	PasswordCost         int
	PasswordPolicy       PasswordPolicy
	RevealAccountAbsence bool
	ResetURLTemplate     string
}

var _ Config = (*SimpleConfig)(nil)

// NewDefaultConfig returns a config with everything but the signing
// key filled in with workable defaults.
func NewDefaultConfig(signingKey string) *SimpleConfig {
	return &SimpleConfig{
		SigningKey:           signingKey,
		SigningMethod:        "HS256",
		ContextKey:           "user",
		TokenExpiration:      72,
		AuthScheme:           "Bearer",
		ResetTokenDuration:   DefaultResetTokenDuration,
		PasswordCost:         DefaultPasswordCost,
		PasswordPolicy:       DefaultPasswordPolicy(),
		RevealAccountAbsence: true,
		ResetURLTemplate:     "/reset-password/%s",
	}
}

func (c *SimpleConfig) GetSigningKey() string    { return c.SigningKey }
func (c *SimpleConfig) GetSigningMethod() string { return c.SigningMethod }
func (c *SimpleConfig) GetContextKey() string    { return c.ContextKey }

// GetTokenExpiration is the access token TTL in hours.
func (c *SimpleConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c *SimpleConfig) GetAuthScheme() string { return c.AuthScheme }
func (c *SimpleConfig) GetIssuer() string     { return c.Issuer }
func (c *SimpleConfig) GetAudience() []string { return c.Audience }

func (c *SimpleConfig) GetResetTokenDuration() time.Duration {
	if c.ResetTokenDuration <= 0 {
		return DefaultResetTokenDuration
	}
	return c.ResetTokenDuration
}

func (c *SimpleConfig) GetPasswordCost() int { return c.PasswordCost }

func (c *SimpleConfig) GetPasswordPolicy() PasswordPolicy { return c.PasswordPolicy }

// GetRevealAccountAbsence controls whether forgot-password discloses
// that an email is not registered. The enumerable response is the
// reference behavior; flip this off for a non-enumerable deployment.
func (c *SimpleConfig) GetRevealAccountAbsence() bool { return c.RevealAccountAbsence }

// GetResetURLTemplate is the fmt template the recovery link is built
// from, receiving the plaintext token.
func (c *SimpleConfig) GetResetURLTemplate() string {
	if c.ResetURLTemplate == "" {
		return "/reset-password/%s"
	}
	return c.ResetURLTemplate
}
