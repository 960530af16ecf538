// Package password provides bcrypt-based password hashing and verification.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Errors.
var (
	ErrMismatch = errors.New("password: does not match")
	ErrTooLong  = errors.New("password: exceeds 72 bytes")
)

// DefaultCost balances hashing time (~50-100ms) against brute-force
// resistance. bcrypt's own default is 10; 12 is the common production choice.
const DefaultCost = 12

// bcrypt silently truncates input beyond 72 bytes; reject instead.
const maxPasswordLen = 72

// Hash returns the bcrypt hash of the given plain-text password.
func Hash(plain string) (string, error) {
	if len(plain) > maxPasswordLen {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a bcrypt hash against a candidate plain-text password.
// Returns ErrMismatch when the password is wrong; any other error indicates
// a malformed hash.
func Verify(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}
