package auth

import (
	"net/mail"
	"strings"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// ValidateSignup checks the signup form. The order of the checks decides
// which message the user sees first.
func ValidateSignup(email, password, displayName string) error {
	if strings.TrimSpace(email) == "" || password == "" || strings.TrimSpace(displayName) == "" {
		return ErrMissingFields
	}
	if err := ValidateEmail(NormalizeEmail(email)); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// ValidateLogin only checks presence; wrong values are reported by the store.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingFields
	}
	return nil
}

// ValidateEmail accepts a bare address, without display name or brackets.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
