// Package accounts persists local-strategy credential records.
package accounts

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/farmclub/internal/client/models"
)

var ErrDuplicateEmail = errors.New("account with this email exists")

type Repository interface {
	Create(ctx context.Context, a *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
