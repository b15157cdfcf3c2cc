package client

import "errors"

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotFound       = errors.New("not found")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrWeakPassword   = errors.New("weak password")
	ErrMissingFields  = errors.New("missing fields")
	ErrInvalidRole    = errors.New("invalid role")
	ErrSessionExpired = errors.New("session expired")
	ErrNoSession      = errors.New("no session")
)
