package profiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/farmclub/internal/common"
	"github.com/dmitrijs2005/farmclub/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQ = `(?s)^\s*INSERT\s+INTO\s+profiles\s*\(uid,\s*role,\s*display_name,\s*email,\s*farm_id,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`
	selectQ = `(?s)^\s*SELECT\s+uid,\s*role,\s*display_name,\s*email,\s*farm_id,\s*created_at\s+FROM\s+profiles\s+WHERE\s+uid\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func sample() *models.Profile {
	return &models.Profile{
		UID:         "u-1",
		Role:        "farmer",
		DisplayName: "Alice",
		Email:       "alice@example.org",
		FarmID:      "farm-9",
		CreatedAt:   time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	p := sample()

	mock.ExpectExec(insertQ).
		WithArgs(p.UID, p.Role, p.DisplayName, p.Email, p.FarmID, p.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertQ).
		WithArgs(p.UID, p.Role, p.DisplayName, p.Email, p.FarmID, p.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectExec(insertQ).
		WithArgs(p.UID, p.Role, p.DisplayName, p.Email, p.FarmID, p.CreatedAt).
		WillReturnError(errors.New("db down"))

	got, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = repo.Create(context.Background(), p)
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = repo.Create(context.Background(), p)
	require.ErrorContains(t, err, "db error: db down")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	want := sample()

	rows := sqlmock.NewRows([]string{"uid", "role", "display_name", "email", "farm_id", "created_at"}).
		AddRow(want.UID, want.Role, want.DisplayName, want.Email, want.FarmID, want.CreatedAt)
	mock.ExpectQuery(selectQ).WithArgs("u-1").WillReturnRows(rows)
	mock.ExpectQuery(selectQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "u-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}

	_, err = repo.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
