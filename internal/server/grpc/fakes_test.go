package grpc

import (
	"context"

	"github.com/dmitrijs2005/farmclub/internal/server/auth"
	"github.com/dmitrijs2005/farmclub/internal/server/models"
	"github.com/dmitrijs2005/farmclub/internal/server/services"
)

const testSecret = "secret"

type fakeUsers struct {
	user    *models.User
	tokens  *services.TokenPair
	salt    []byte
	revoked map[string]bool

	signedOut *auth.Claims

	Err          error
	IsRevokedErr error
}

func (f *fakeUsers) Register(_ context.Context, email, displayName string, _, _ []byte) (*models.User, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &models.User{ID: "u1", Email: email, DisplayName: displayName}, nil
}

func (f *fakeUsers) GetSalt(context.Context, string) ([]byte, error) {
	return f.salt, f.Err
}

func (f *fakeUsers) Login(context.Context, string, []byte) (*services.TokenPair, *models.User, error) {
	if f.Err != nil {
		return nil, nil, f.Err
	}
	return f.tokens, f.user, nil
}

func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.tokens, nil
}

func (f *fakeUsers) WhoAmI(_ context.Context, userID string) (*models.User, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &models.User{ID: userID, Email: "ann@farm.example", DisplayName: "Ann"}, nil
}

func (f *fakeUsers) SignOut(_ context.Context, claims *auth.Claims) error {
	f.signedOut = claims
	return f.Err
}

func (f *fakeUsers) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.IsRevokedErr != nil {
		return false, f.IsRevokedErr
	}
	return f.revoked[jti], nil
}

func (f *fakeUsers) ParseAccessToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, []byte(testSecret))
}

type fakeProfiles struct {
	created *models.Profile
	callers []string

	Err error
}

func (f *fakeProfiles) Create(_ context.Context, callerID string, p *models.Profile) (*models.Profile, error) {
	f.callers = append(f.callers, callerID)
	if f.Err != nil {
		return nil, f.Err
	}
	f.created = p
	return p, nil
}

func (f *fakeProfiles) Get(_ context.Context, callerID, uid string) (*models.Profile, error) {
	f.callers = append(f.callers, callerID)
	if f.Err != nil {
		return nil, f.Err
	}
	return &models.Profile{UID: uid, Role: "farmer"}, nil
}

func (f *fakeProfiles) ImageUploadURL(_ context.Context, callerID, fileName, _ string) (*services.UploadURL, error) {
	f.callers = append(f.callers, callerID)
	if f.Err != nil {
		return nil, f.Err
	}
	return &services.UploadURL{Key: "farm-images/" + callerID + "/" + fileName, URL: "https://s3/put"}, nil
}
