// Package cryptox contains the password primitives used by both credential
// store strategies.
//
// The remote strategy never sends a password to the identity service: the
// client derives a key from (password, salt) with argon2id and sends only a
// SHA-256 verifier of that key. The local strategy stores bcrypt hashes.
package cryptox

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// SaltSize is the salt length generated at registration.
const SaltSize = 32

// MakeVerifier returns the value the identity service stores and compares.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches password with salt using argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// DeriveVerifier is MakeVerifier(DeriveMasterKey(password, salt)).
func DeriveVerifier(password []byte, salt []byte) []byte {
	return MakeVerifier(DeriveMasterKey(password, salt))
}

// HashPassword returns a bcrypt hash suitable for local storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is
// reported as an error, a mismatch as false with a nil error.
func CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
