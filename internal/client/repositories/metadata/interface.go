// Package metadata stores small key/value records of the client: the
// current-identity pointer, remote session tokens and pending profiles.
package metadata

import (
	"context"
)

const (
	KeyCurrentIdentity = "current_identity"
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"

	pendingProfilePrefix = "pending_profile:"
)

// PendingProfileKey is the key a not-yet-written profile is kept under.
func PendingProfileKey(uid string) string {
	return pendingProfilePrefix + uid
}

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}
