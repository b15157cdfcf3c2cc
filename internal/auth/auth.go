// Package auth holds the identity and profile model shared by the credential
// stores, the session controller and the route guard, plus the error kinds
// every store failure is mapped to.
package auth

import (
	"context"
	"time"
)

// Origin tells which credential store strategy produced an identity.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Role is the membership role attached to a profile.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleAdmin
}

// ParseRole converts user input to a Role, defaulting to farmer.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleFarmer, nil
	case RoleFarmer, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// Identity is one authenticated principal.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Origin      Origin `json:"origin"`
}

// Profile is role and display metadata attached to an Identity.
type Profile struct {
	UID         string    `json:"uid"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	FarmID      string    `json:"farm_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProfile builds the profile written right after signup.
func NewProfile(id *Identity, role Role, now time.Time) *Profile {
	return &Profile{
		UID:         id.ID,
		Role:        role,
		DisplayName: id.DisplayName,
		Email:       id.Email,
		CreatedAt:   now.UTC(),
	}
}

// CredentialStore verifies and creates identities.
type CredentialStore interface {
	CreateAccount(ctx context.Context, email, password, displayName string, role Role) (*Identity, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
}

// SyncStore is a credential store whose current identity can be read
// directly. The local strategy implements it.
type SyncStore interface {
	CredentialStore
	CurrentIdentity(ctx context.Context) (*Identity, error)
}

// WatchableStore pushes identity changes. The callback is invoked once on
// subscription with the current identity (nil if none) and then on every
// change, including changes the caller did not initiate.
type WatchableStore interface {
	CredentialStore
	SubscribeToIdentityChanges(fn func(*Identity)) (unsubscribe func())
}

// ProfileStore persists profiles keyed by identity id.
//
// Create fails with ErrAlreadyExists when a profile for the uid exists.
// Fetch returns (nil, nil) when no profile exists yet.
type ProfileStore interface {
	Create(ctx context.Context, p *Profile) error
	Fetch(ctx context.Context, uid string) (*Profile, error)
}

// PendingProfiles remembers profiles that could not be written at signup.
type PendingProfiles interface {
	SavePending(ctx context.Context, p *Profile) error
	Pending(ctx context.Context, uid string) (*Profile, error)
	DeletePending(ctx context.Context, uid string) error
}
