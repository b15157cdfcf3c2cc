package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/farmclub/internal/client/client"
	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
)

// fakeClient is an in-memory client.Client. Verifiers are compared as
// strings, so the salt/verifier derivation runs for real.
type fakeClient struct {
	mu sync.Mutex

	users    map[string]*fakeUser
	profiles map[string]*pb.Profile
	session  string
	lost     []func()

	RegisterErr   error
	GetSaltErr    error
	LoginErr      error
	WhoAmIErr     error
	SignOutErr    error
	CreateProfErr error
	GetProfErr    error
	UploadErr     error

	signOutCalls int
}

type fakeUser struct {
	user     pb.User
	salt     []byte
	verifier string
}

func newFakeClient() *fakeClient {
	return &fakeClient{users: map[string]*fakeUser{}, profiles: map[string]*pb.Profile{}}
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error                   { return nil }
func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Register(_ context.Context, email, displayName string, salt, verifier []byte) (*pb.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	if _, ok := f.users[email]; ok {
		return nil, client.ErrAlreadyExists
	}
	u := &fakeUser{user: pb.User{ID: "uid-" + email, Email: email, DisplayName: displayName}, salt: salt, verifier: string(verifier)}
	f.users[email] = u
	cp := u.user
	return &cp, nil
}

func (f *fakeClient) GetSalt(_ context.Context, email string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetSaltErr != nil {
		return nil, f.GetSaltErr
	}
	if u, ok := f.users[email]; ok {
		return append([]byte(nil), u.salt...), nil
	}
	return []byte("random-salt"), nil
}

func (f *fakeClient) Login(_ context.Context, email string, verifier []byte) (*pb.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	u, ok := f.users[email]
	if !ok || u.verifier != string(verifier) {
		return nil, client.ErrUnauthorized
	}
	f.session = email
	cp := u.user
	return &cp, nil
}

func (f *fakeClient) WhoAmI(context.Context) (*pb.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WhoAmIErr != nil {
		return nil, f.WhoAmIErr
	}
	if f.session == "" {
		return nil, client.ErrNoSession
	}
	cp := f.users[f.session].user
	return &cp, nil
}

func (f *fakeClient) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	f.session = ""
	return f.SignOutErr
}

func (f *fakeClient) CreateProfile(_ context.Context, p *pb.Profile) (*pb.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateProfErr != nil {
		return nil, f.CreateProfErr
	}
	if _, ok := f.profiles[p.UID]; ok {
		return nil, client.ErrAlreadyExists
	}
	cp := *p
	f.profiles[p.UID] = &cp
	return &cp, nil
}

func (f *fakeClient) GetProfile(_ context.Context, uid string) (*pb.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetProfErr != nil {
		return nil, f.GetProfErr
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, client.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeClient) ProfileImageUploadURL(_ context.Context, fileName, _ string) (*pb.ProfileImageUploadURLResponse, error) {
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	return &pb.ProfileImageUploadURLResponse{Key: "farm-images/x/" + fileName, URL: "https://s3/" + fileName}, nil
}

func (f *fakeClient) HasSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session != ""
}

func (f *fakeClient) OnSessionLost(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lost = append(f.lost, fn)
}

// expire simulates the server rejecting the refresh token.
func (f *fakeClient) expire() {
	f.mu.Lock()
	f.session = ""
	hooks := append([]func(){}, f.lost...)
	f.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
