package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/sqliterr"
	"github.com/dmitrijs2005/farmclub/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, p *auth.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (uid, email, display_name, role, farm_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.UID, p.Email, p.DisplayName, string(p.Role), p.FarmID, p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if sqliterr.IsUniqueViolation(err) {
			return ErrExists
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Get returns (nil, nil) when uid has no profile.
func (r *SQLiteRepository) Get(ctx context.Context, uid string) (*auth.Profile, error) {
	var p auth.Profile
	var role, created string
	err := r.db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, role, farm_id, created_at
		FROM profiles WHERE uid = ?
	`, uid).Scan(&p.UID, &p.Email, &p.DisplayName, &role, &p.FarmID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.Role = auth.Role(role)
	p.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile created_at: %w", err)
	}
	return &p, nil
}
