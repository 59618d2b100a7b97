package authgate

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used when the config
// does not set one. Deliberately above bcrypt.DefaultCost, the hash is
// supposed to be slow.
const DefaultPasswordCost = 12

// BcryptHasher implements PasswordAuthenticator on top of bcrypt.
// bcrypt embeds a per-hash salt and compares in constant time, so
// neither hashing nor comparison leaks through timing.
type BcryptHasher struct {
	cost int
}

var _ PasswordAuthenticator = (*BcryptHasher)(nil)

// NewBcryptHasher returns a hasher with the given work factor. Costs
// outside bcrypt's accepted range fall back to DefaultPasswordCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordHashCost()
	}
	return &BcryptHasher{cost: cost}
}

// HashPassword will generate a password hash
func (b *BcryptHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func (b *BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// HashPassword hashes with the default work factor.
func HashPassword(password string) (string, error) {
	return NewBcryptHasher(passwordHashCost()).HashPassword(password)
}

// ComparePasswordAndHash validates cleartext against a stored hash
// using the default hasher.
func ComparePasswordAndHash(password, hash string) error {
	return NewBcryptHasher(passwordHashCost()).ComparePasswordAndHash(password, hash)
}
