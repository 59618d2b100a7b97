package authgate_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authgate "github.com/goliatone/go-authgate"
)

func TestResetTokenGenerator(t *testing.T) {
	frozen := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	gen := authgate.NewResetTokenGenerator(15 * time.Minute).
		WithClock(func() time.Time { return frozen })

	reset, err := gen.Generate()
	require.NoError(t, err)

	t.Run("plaintext is 32 bytes of hex", func(t *testing.T) {
		raw, err := hex.DecodeString(reset.Plaintext)
		require.NoError(t, err)
		assert.Len(t, raw, 32)
	})

	t.Run("hash is the derived stored form, never the plaintext", func(t *testing.T) {
		assert.Equal(t, authgate.HashResetToken(reset.Plaintext), reset.Hash)
		assert.NotEqual(t, reset.Plaintext, reset.Hash)
	})

	t.Run("expiry is clock plus window", func(t *testing.T) {
		assert.Equal(t, frozen.Add(15*time.Minute), reset.ExpiresAt)
	})

	t.Run("consecutive tokens are distinct", func(t *testing.T) {
		other, err := gen.Generate()
		require.NoError(t, err)
		assert.NotEqual(t, reset.Plaintext, other.Plaintext)
		assert.NotEqual(t, reset.Hash, other.Hash)
	})
}

func TestResetTokenGeneratorDefaultWindow(t *testing.T) {
	frozen := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	gen := authgate.NewResetTokenGenerator(0).
		WithClock(func() time.Time { return frozen })

	reset, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, frozen.Add(authgate.DefaultResetTokenDuration), reset.ExpiresAt)
}

func TestHashResetTokenIsDeterministic(t *testing.T) {
	assert.Equal(t, authgate.HashResetToken("abc"), authgate.HashResetToken("abc"))
	assert.NotEqual(t, authgate.HashResetToken("abc"), authgate.HashResetToken("abd"))
	assert.Len(t, authgate.HashResetToken("abc"), 64)
}
