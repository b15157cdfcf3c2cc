package models

import "time"

// RefreshToken is an opaque, single-use token that can be exchanged for a
// new access token until Expires.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// ExpiredAt reports whether the token is no longer usable at t.
func (r *RefreshToken) ExpiredAt(t time.Time) bool {
	return !t.Before(r.Expires)
}
