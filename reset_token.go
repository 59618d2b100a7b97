package authgate

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// DefaultResetTokenDuration is the recovery window granted to a reset
// link when the config does not override it.
const DefaultResetTokenDuration = 10 * time.Minute

// resetTokenBytes is the entropy carried by a reset token plaintext.
const resetTokenBytes = 32

// ResetToken is a freshly minted recovery secret. Plaintext leaves the
// process exactly once, inside the recovery email; only Hash is ever
// persisted.
type ResetToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenGenerator mints single-use, time-limited recovery tokens.
type ResetTokenGenerator struct {
	window time.Duration
	now    func() time.Time
}

// NewResetTokenGenerator returns a generator with the given validity
// window. Non-positive windows fall back to the default.
func NewResetTokenGenerator(window time.Duration) *ResetTokenGenerator {
	if window <= 0 {
		window = DefaultResetTokenDuration
	}
	return &ResetTokenGenerator{
		window: window,
		now:    time.Now,
	}
}

// WithClock injects a custom clock, useful in tests.
func (g *ResetTokenGenerator) WithClock(clock func() time.Time) *ResetTokenGenerator {
	if clock != nil {
		g.now = clock
	}
	return g
}

// Generate mints a new token. The plaintext is high-entropy random
// data hex encoded; the stored form is its sha256 digest.
func (g *ResetTokenGenerator) Generate() (*ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate reset token entropy")
	}

	plaintext := hex.EncodeToString(buf)

	return &ResetToken{
		Plaintext: plaintext,
		Hash:      HashResetToken(plaintext),
		ExpiresAt: g.now().Add(g.window),
	}, nil
}

// HashResetToken derives the stored form of a reset token. Lookups go
// through the hash so the store never sees the plaintext.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
