package cli

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/client/session"
)

// fakeSession is a scripted sessionController.
type fakeSession struct {
	mu   sync.Mutex
	snap session.Session

	loginEmail, loginPassword string
	loginIdentity             *auth.Identity
	LoginErr                  error

	signupEmail, signupPassword, signupName string
	signupRole                              auth.Role
	SignupErr                               error

	logoutCalled bool
	LogoutErr    error

	clears int
}

func (f *fakeSession) Snapshot() session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) set(s session.Session) {
	f.mu.Lock()
	f.snap = s
	f.mu.Unlock()
}

func (f *fakeSession) Subscribe(func(session.Session)) func() { return func() {} }
func (f *fakeSession) WaitReady(context.Context) error        { return nil }
func (f *fakeSession) Close()                                 {}

func (f *fakeSession) ClearError() {
	f.mu.Lock()
	f.clears++
	f.snap.Error = ""
	f.mu.Unlock()
}

func (f *fakeSession) Login(_ context.Context, email, password string) error {
	f.loginEmail, f.loginPassword = email, password
	if f.LoginErr != nil {
		f.set(session.Session{State: session.StateAnonymous, Error: auth.Message(f.LoginErr)})
		return f.LoginErr
	}
	f.set(session.Session{State: session.StateAuthenticated, Identity: f.loginIdentity,
		Profile: &auth.Profile{UID: f.loginIdentity.ID, Role: auth.RoleFarmer}})
	return nil
}

func (f *fakeSession) Signup(_ context.Context, email, password, displayName string, role auth.Role) error {
	f.signupEmail, f.signupPassword, f.signupName, f.signupRole = email, password, displayName, role
	if f.SignupErr != nil {
		f.set(session.Session{State: session.StateAnonymous, Error: auth.Message(f.SignupErr)})
		return f.SignupErr
	}
	id := &auth.Identity{ID: "u1", Email: email, DisplayName: displayName, Origin: auth.OriginLocal}
	f.set(session.Session{State: session.StateAuthenticated, Identity: id, Profile: &auth.Profile{UID: "u1", Role: role}})
	return nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.logoutCalled = true
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	f.set(session.Session{State: session.StateAnonymous})
	return nil
}
