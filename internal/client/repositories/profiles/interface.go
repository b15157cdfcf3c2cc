// Package profiles persists role and display metadata of identities.
package profiles

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/farmclub/internal/auth"
)

var ErrExists = errors.New("profile exists")

type Repository interface {
	Create(ctx context.Context, p *auth.Profile) error
	Get(ctx context.Context, uid string) (*auth.Profile, error)
}
