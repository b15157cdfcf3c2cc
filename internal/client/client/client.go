package client

import (
	"context"

	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, displayName string, salt []byte, verifier []byte) (*pb.User, error)
	GetSalt(ctx context.Context, email string) ([]byte, error)
	Login(ctx context.Context, email string, verifier []byte) (*pb.User, error)
	WhoAmI(ctx context.Context) (*pb.User, error)
	SignOut(ctx context.Context) error
	CreateProfile(ctx context.Context, p *pb.Profile) (*pb.Profile, error)
	GetProfile(ctx context.Context, uid string) (*pb.Profile, error)
	ProfileImageUploadURL(ctx context.Context, fileName, contentType string) (*pb.ProfileImageUploadURLResponse, error)

	// HasSession reports whether tokens are held.
	HasSession() bool
	// OnSessionLost registers fn to run when the tokens are rejected and
	// cannot be refreshed.
	OnSessionLost(fn func())
}

// TokenStore persists the session tokens between runs.
type TokenStore interface {
	LoadTokens(ctx context.Context) (access, refresh string, err error)
	SaveTokens(ctx context.Context, access, refresh string) error
	ClearTokens(ctx context.Context) error
}
