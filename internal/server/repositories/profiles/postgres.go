package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/farmclub/internal/common"
	"github.com/dmitrijs2005/farmclub/internal/dbx"
	"github.com/dmitrijs2005/farmclub/internal/server/models"
	"github.com/dmitrijs2005/farmclub/internal/server/repositories/pgerr"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (uid, role, display_name, email, farm_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, p.UID, p.Role, p.DisplayName, p.Email, p.FarmID, p.CreatedAt); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, uid string) (*models.Profile, error) {
	query := `
		SELECT uid, role, display_name, email, farm_id, created_at
		FROM profiles
		WHERE uid = $1
	`
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, uid).
		Scan(&p.UID, &p.Role, &p.DisplayName, &p.Email, &p.FarmID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
