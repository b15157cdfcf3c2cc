package auth

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDuplicateAccount     = errors.New("duplicate account")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrWeakPassword         = errors.New("weak password")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrMissingFields        = errors.New("missing fields")
	ErrInvalidRole          = errors.New("invalid role")
	ErrNetworkUnavailable   = errors.New("network unavailable")
	ErrOperationInProgress  = errors.New("operation in progress")
	ErrAlreadyExists        = errors.New("already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

var kinds = []error{
	ErrDuplicateAccount,
	ErrInvalidCredentials,
	ErrWeakPassword,
	ErrInvalidEmail,
	ErrMissingFields,
	ErrInvalidRole,
	ErrNetworkUnavailable,
	ErrOperationInProgress,
	ErrAlreadyExists,
	ErrAuthenticationFailed,
}

// Kind returns the error kind err belongs to, or nil if it has none.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Classify maps err to one of the kinds above. Errors already carrying a kind
// are returned as is; deadline errors become ErrNetworkUnavailable and
// anything else is wrapped in ErrAuthenticationFailed with the cause kept.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
}

// Message is the text shown next to the form that triggered err.
func Message(err error) string {
	switch Kind(Classify(err)) {
	case nil:
		return ""
	case ErrDuplicateAccount:
		return "An account with this email already exists. Please log in instead."
	case ErrInvalidCredentials:
		return "Invalid email or password. Please try again."
	case ErrWeakPassword:
		return "Password should be at least 6 characters long."
	case ErrInvalidEmail:
		return "Please enter a valid email address."
	case ErrMissingFields:
		return "Please fill in all fields"
	case ErrInvalidRole:
		return "Please choose a valid role."
	case ErrNetworkUnavailable:
		return "Unable to reach the server. Please check your connection and try again."
	case ErrOperationInProgress:
		return "Please wait for the current request to finish."
	case ErrAlreadyExists:
		return "A profile for this account already exists."
	}
	return "Authentication failed. Please check your connection and try again."
}
