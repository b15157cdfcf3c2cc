// Package guard decides what to show for a path given the session state.
package guard

import (
	"path"
	"slices"
	"strings"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/client/session"
)

type Kind int

const (
	ShowContent Kind = iota
	ShowLoadingPlaceholder
	RedirectToLogin
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case ShowContent:
		return "show-content"
	case ShowLoadingPlaceholder:
		return "show-loading-placeholder"
	case RedirectToLogin:
		return "redirect-to-login"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Decision is the guard result. ReturnPath is set only for RedirectToLogin
// and is meant to be kept in navigation state, not put in the login URL.
type Decision struct {
	Kind       Kind
	ReturnPath string
}

// ProtectedPaths are the routes that need a signed-in identity. Sub-paths
// are protected too.
var ProtectedPaths = []string{"/dashboard", "/admin", "/farm-profile"}

// RoleRestricted lists routes that also need a specific role.
var RoleRestricted = map[string][]auth.Role{
	"/admin": {auth.RoleAdmin},
}

// Evaluate is the route guard for a protected path.
func Evaluate(s session.Session, currentPath string) Decision {
	if s.Loading {
		return Decision{Kind: ShowLoadingPlaceholder}
	}
	if s.Identity == nil {
		return Decision{Kind: RedirectToLogin, ReturnPath: currentPath}
	}
	return Decision{Kind: ShowContent}
}

// RequireRole narrows a ShowContent decision to sessions whose profile has
// one of roles. Other decisions pass through unchanged.
func RequireRole(d Decision, s session.Session, roles ...auth.Role) Decision {
	if d.Kind != ShowContent || len(roles) == 0 {
		return d
	}
	if slices.Contains(roles, s.Role()) {
		return d
	}
	return Decision{Kind: Forbidden}
}

// IsProtected reports whether p is, or is below, a protected path.
func IsProtected(p string) bool {
	return matchPrefix(ProtectedPaths, p) != ""
}

// Route evaluates p: public paths are always shown, protected ones go
// through Evaluate and, where configured, RequireRole.
func Route(s session.Session, p string) Decision {
	p = Clean(p)
	if !IsProtected(p) {
		return Decision{Kind: ShowContent}
	}
	d := Evaluate(s, p)
	for prefix, roles := range RoleRestricted {
		if matchPrefix([]string{prefix}, p) != "" {
			d = RequireRole(d, s, roles...)
		}
	}
	return d
}

// Clean normalizes user input into an absolute path.
func Clean(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func matchPrefix(prefixes []string, p string) string {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return prefix
		}
	}
	return ""
}
