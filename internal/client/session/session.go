// Package session implements the session controller: the state machine
// that composes a credential store and a profile store and exposes the
// current identity, profile, loading flag and error to the presentation
// layer.
//
// States move from Bootstrapping to Anonymous or Authenticated. Login,
// Signup and Logout pass through Pending while they run. Identity changes
// pushed by a watchable store are applied in arrival order and win over
// what an in-flight operation was about to set.
package session

import "github.com/dmitrijs2005/farmclub/internal/auth"

type State string

const (
	StateBootstrapping State = "bootstrapping"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StatePending       State = "pending"
)

// Session is a snapshot of the controller. Identity and Profile are copies
// and may be kept by the caller.
type Session struct {
	State    State
	Identity *auth.Identity
	Profile  *auth.Profile
	Loading  bool
	Error    string
}

func (s Session) Authenticated() bool {
	return s.Identity != nil
}

// Role returns the profile role or "" when no profile is loaded.
func (s Session) Role() auth.Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

func (s Session) clone() Session {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}
