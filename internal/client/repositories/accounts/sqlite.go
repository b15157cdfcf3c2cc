package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/client/models"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/sqliterr"
	"github.com/dmitrijs2005/farmclub/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a; an existing email yields ErrDuplicateEmail.
func (r *SQLiteRepository) Create(ctx context.Context, a *models.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, display_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.PasswordHash, a.DisplayName, a.Role, a.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if sqliterr.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetByEmail returns (nil, nil) when no account has the email.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, `WHERE email = ?`, email)
}

// GetByID returns (nil, nil) when no account has the id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	var a models.Account
	var created string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, display_name, role, created_at
		FROM accounts `+where, arg).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse account created_at: %w", err)
	}
	return &a, nil
}
