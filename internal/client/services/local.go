package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/client/models"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmclub/internal/cryptox"
	"github.com/dmitrijs2005/farmclub/internal/dbx"
	"github.com/dmitrijs2005/farmclub/internal/logging"
	"github.com/google/uuid"
)

// LocalStore is the device-local credential store.
type LocalStore struct {
	db     *sql.DB
	now    func() time.Time
	logger logging.Logger
}

var _ auth.SyncStore = (*LocalStore)(nil)

func NewLocalStore(db *sql.DB, logger logging.Logger) *LocalStore {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &LocalStore{db: db, now: time.Now, logger: logger}
}

// newLocalID returns local_<unix-millis>_<9 random chars>.
func newLocalID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("local_%d_%s", now.UnixMilli(), suffix)
}

// CreateAccount writes the account and makes it current in one transaction.
func (s *LocalStore) CreateAccount(ctx context.Context, email, password, displayName string, role auth.Role) (*auth.Identity, error) {
	if err := auth.ValidateSignup(email, password, displayName); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, auth.ErrInvalidRole
	}
	email = auth.NormalizeEmail(email)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	acct := &models.Account{
		ID:           newLocalID(now),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Role:         string(role),
		CreatedAt:    now.UTC(),
	}
	id := identityOf(acct)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := accounts.NewSQLiteRepository(tx)

		existing, err := repo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return auth.ErrDuplicateAccount
		}
		if err := repo.Create(ctx, acct); err != nil {
			if errors.Is(err, accounts.ErrDuplicateEmail) {
				return auth.ErrDuplicateAccount
			}
			return err
		}
		return metadata.SetJSON(ctx, metadata.NewSQLiteRepository(tx), metadata.KeyCurrentIdentity, id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "local account created", "uid", id.ID)
	return id, nil
}

// Authenticate checks email and password and makes the account current.
func (s *LocalStore) Authenticate(ctx context.Context, email, password string) (*auth.Identity, error) {
	if err := auth.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	acct, err := accounts.NewSQLiteRepository(s.db).GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, auth.ErrInvalidCredentials
	}

	ok, err := cryptox.CheckPassword(acct.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}

	id := identityOf(acct)
	if err := metadata.SetJSON(ctx, metadata.NewSQLiteRepository(s.db), metadata.KeyCurrentIdentity, id); err != nil {
		return nil, err
	}
	return id, nil
}

// CurrentIdentity reads the current-identity pointer; nil when signed out.
func (s *LocalStore) CurrentIdentity(ctx context.Context) (*auth.Identity, error) {
	return metadata.GetJSON[auth.Identity](ctx, metadata.NewSQLiteRepository(s.db), metadata.KeyCurrentIdentity)
}

// SignOut clears the pointer; accounts are kept.
func (s *LocalStore) SignOut(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, metadata.KeyCurrentIdentity)
}

func identityOf(a *models.Account) *auth.Identity {
	return &auth.Identity{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Origin:      auth.OriginLocal,
	}
}
