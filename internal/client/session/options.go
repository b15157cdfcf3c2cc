package session

import (
	"time"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/logging"
)

type Option func(*Controller)

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPendingProfiles enables retrying profile writes that failed after a
// successful signup.
func WithPendingProfiles(p auth.PendingProfiles) Option {
	return func(c *Controller) { c.pending = p }
}

// WithOperationTimeout bounds each Login, Signup and Logout.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Controller) { c.opTimeout = d }
}

func withClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}
