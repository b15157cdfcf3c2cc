// Package client contains the transport side of the remote strategy.
//
// # Overview
//
// The package provides:
//  1. The Client contract used by the remote credential store: Register,
//     GetSalt, Login, WhoAmI, SignOut, profile calls and the presigned image
//     upload URL.
//  2. GRPCClient, which injects the access token through an interceptor,
//     bounds each attempt with a request timeout, refreshes an expired token
//     once and reports an unrecoverable session through OnSessionLost.
//  3. Local database bootstrap (OpenDatabase, RunMigrations) with embedded
//     goose migrations, and MetadataTokenStore for keeping tokens across runs.
//
// # Error Handling
//
// gRPC statuses are mapped to sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrAlreadyExists, ErrNotFound,
// ErrInvalidEmail, ErrWeakPassword, ErrMissingFields, ErrSessionExpired.
package client
