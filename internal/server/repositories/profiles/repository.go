// Package profiles stores farmclub user profiles in PostgreSQL.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/farmclub/internal/server/models"
)

type Repository interface {
	// Create inserts p. A second profile for the same uid yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	// Get returns common.ErrorNotFound when uid has no profile.
	Get(ctx context.Context, uid string) (*models.Profile, error)
}
