package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/farmclub/internal/auth"
)

// fakeWatchStore mimics the remote strategy: it pushes every identity
// change to its subscribers. Until resolve is called subscribers get no
// initial event, which keeps the controller in Bootstrapping.
type fakeWatchStore struct {
	mu       sync.Mutex
	subs     map[int]func(*auth.Identity)
	next     int
	resolved bool
	current  *auth.Identity
	accounts map[string]string // email -> password

	// authGate, when set, blocks Authenticate until it is closed or ctx ends.
	authGate   chan struct{}
	authCalled chan struct{}

	AuthErr    error
	CreateErr  error
	SignOutErr error
	signOuts   int
	creates    int

	// afterAuth runs after Authenticate has pushed the new identity.
	afterAuth func()
}

func newFakeWatchStore() *fakeWatchStore {
	return &fakeWatchStore{subs: map[int]func(*auth.Identity){}, accounts: map[string]string{}}
}

func remoteID(email string) *auth.Identity {
	return &auth.Identity{ID: "uid-" + email, Email: email, DisplayName: "Ann", Origin: auth.OriginRemote}
}

func (f *fakeWatchStore) SubscribeToIdentityChanges(fn func(*auth.Identity)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	resolved, cur := f.resolved, f.current
	f.mu.Unlock()
	if resolved {
		fn(cur)
	}
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeWatchStore) emit(id *auth.Identity) {
	f.mu.Lock()
	f.resolved = true
	f.current = id
	subs := make([]func(*auth.Identity), 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()
	for _, s := range subs {
		s(id)
	}
}

func (f *fakeWatchStore) CreateAccount(_ context.Context, email, password, _ string, _ auth.Role) (*auth.Identity, error) {
	f.mu.Lock()
	if f.CreateErr != nil {
		f.mu.Unlock()
		return nil, f.CreateErr
	}
	if _, ok := f.accounts[email]; ok {
		f.mu.Unlock()
		return nil, auth.ErrDuplicateAccount
	}
	f.accounts[email] = password
	f.creates++
	f.mu.Unlock()

	id := remoteID(email)
	f.emit(id)
	return id, nil
}

func (f *fakeWatchStore) Authenticate(ctx context.Context, email, password string) (*auth.Identity, error) {
	f.mu.Lock()
	gate, called := f.authGate, f.authCalled
	f.mu.Unlock()
	if called != nil {
		called <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	if f.AuthErr != nil {
		f.mu.Unlock()
		return nil, f.AuthErr
	}
	if pw, ok := f.accounts[email]; !ok || pw != password {
		f.mu.Unlock()
		return nil, auth.ErrInvalidCredentials
	}
	after := f.afterAuth
	f.mu.Unlock()

	id := remoteID(email)
	f.emit(id)
	if after != nil {
		after()
	}
	return id, nil
}

func (f *fakeWatchStore) SignOut(context.Context) error {
	f.mu.Lock()
	f.signOuts++
	err := f.SignOutErr
	f.mu.Unlock()
	f.emit(nil)
	return err
}

// fakeProfiles is an in-memory ProfileStore.
type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*auth.Profile

	// fetchGate, when set, blocks Fetch until closed.
	fetchGate    chan struct{}
	fetchStarted chan string

	CreateErr error
	FetchErr  error
	creates   int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]*auth.Profile{}}
}

func (f *fakeProfiles) Create(_ context.Context, p *auth.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if _, ok := f.profiles[p.UID]; ok {
		return auth.ErrAlreadyExists
	}
	cp := *p
	f.profiles[p.UID] = &cp
	return nil
}

func (f *fakeProfiles) Fetch(_ context.Context, uid string) (*auth.Profile, error) {
	f.mu.Lock()
	gate, started := f.fetchGate, f.fetchStarted
	f.mu.Unlock()
	if started != nil {
		started <- uid
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// memPending is an in-memory PendingProfiles.
type memPending struct {
	mu sync.Mutex
	m  map[string]*auth.Profile
}

func newMemPending() *memPending { return &memPending{m: map[string]*auth.Profile{}} }

func (p *memPending) SavePending(_ context.Context, pr *auth.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *pr
	p.m[pr.UID] = &cp
	return nil
}

func (p *memPending) Pending(_ context.Context, uid string) (*auth.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m[uid], nil
}

func (p *memPending) DeletePending(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, uid)
	return nil
}
