package server

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/farmclub/internal/dbx"
	"github.com/dmitrijs2005/farmclub/internal/logging"
	"github.com/dmitrijs2005/farmclub/internal/server/config"
	"github.com/dmitrijs2005/farmclub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/farmclub/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/farmclub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/farmclub/internal/server/repositories/users"
	"github.com/dmitrijs2005/farmclub/internal/server/revocation"
	"github.com/dmitrijs2005/farmclub/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepCounter struct {
	refreshtokens.Repository
	calls atomic.Int32
}

func (s *sweepCounter) DeleteExpired(context.Context, time.Time) (int64, error) {
	s.calls.Add(1)
	return 2, nil
}

type fakeManager struct {
	migrateErr error
	tokens     *sweepCounter
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error    { return m.migrateErr }
func (m *fakeManager) Users(dbx.DBTX) users.Repository                 { return nil }
func (m *fakeManager) Profiles(dbx.DBTX) profiles.Repository           { return nil }
func (m *fakeManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }

func testConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.S3Bucket = ""
	return &c
}

// stubDeps swaps the database, repository manager and presigner seams.
func stubDeps(t *testing.T, m *fakeManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origManager, origPresigner := openDatabase, newRepositoryManager, newPresigner
	t.Cleanup(func() {
		openDatabase, newRepositoryManager, newPresigner = origOpen, origManager, origPresigner
	})

	openDatabase = func(context.Context, string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return m }
	return mock
}

func TestNewApp_DatabaseError(t *testing.T) {
	stubDeps(t, &fakeManager{})
	openDatabase = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("refused") }

	_, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.ErrorContains(t, err, "db init error")
}

func TestNewApp_MigrationError(t *testing.T) {
	mock := stubDeps(t, &fakeManager{migrateErr: errors.New("bad sql")})
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.ErrorContains(t, err, "migrations error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_RevocationBackends(t *testing.T) {
	t.Run("memory by default", func(t *testing.T) {
		stubDeps(t, &fakeManager{})
		app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
		require.NoError(t, err)
		assert.IsType(t, &revocation.MemoryList{}, app.revoked)
	})

	t.Run("redis when configured", func(t *testing.T) {
		stubDeps(t, &fakeManager{})
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.RedisAddr = mr.Addr()

		app, err := NewApp(context.Background(), cfg, logging.Nop{})
		require.NoError(t, err)
		assert.IsType(t, &revocation.RedisList{}, app.revoked)
	})

	t.Run("unreachable redis fails", func(t *testing.T) {
		mock := stubDeps(t, &fakeManager{})
		mock.ExpectClose()
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg := testConfig()
		cfg.RedisAddr = addr

		_, err := NewApp(context.Background(), cfg, logging.Nop{})
		require.ErrorContains(t, err, "redis init error")
	})
}

func TestNewApp_PresignerFailureDisablesUploads(t *testing.T) {
	stubDeps(t, &fakeManager{})
	newPresigner = func(context.Context, storage.S3Config) (*storage.Presigner, error) {
		return nil, errors.New("no credentials")
	}
	cfg := testConfig()
	cfg.S3Bucket = "farmclub"

	app, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)

	_, err = app.profiles.ImageUploadURL(context.Background(), "u1", "barn.jpg", "")
	require.Error(t, err)
}

func TestRun_StopsAndSweeps(t *testing.T) {
	tokens := &sweepCounter{}
	mock := stubDeps(t, &fakeManager{tokens: tokens})
	mock.ExpectClose()

	cfg := testConfig()
	cfg.TokenSweepInterval = 10 * time.Millisecond

	app, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return tokens.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ListenErrorStopsGroup(t *testing.T) {
	mock := stubDeps(t, &fakeManager{tokens: &sweepCounter{}})
	mock.ExpectClose()

	cfg := testConfig()
	cfg.EndpointAddrGRPC = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), cfg, logging.Nop{})
	require.NoError(t, err)

	require.Error(t, app.Run(context.Background()))
}
