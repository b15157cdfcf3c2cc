// Package server wires the identity service together: PostgreSQL storage,
// the access token revocation list, profile image presigning and the gRPC
// endpoint, plus a background sweeper for expired refresh tokens.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/logging"
	"github.com/dmitrijs2005/farmclub/internal/server/config"
	"github.com/dmitrijs2005/farmclub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/farmclub/internal/server/revocation"
	"github.com/dmitrijs2005/farmclub/internal/server/services"
	"github.com/dmitrijs2005/farmclub/internal/server/storage"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/farmclub/internal/server/grpc"
)

// Seams for tests.
var (
	openDatabase         = repomanager.OpenDatabase
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newPresigner         = storage.NewPresigner
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	revoked  revocation.List
	users    *services.UserService
	profiles *services.ProfileService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	revoked, err := newRevocationList(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var presigner services.ImagePresigner
	if c.S3Bucket != "" {
		p, err := newPresigner(ctx, storage.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			logger.Warn(ctx, "S3 presigner unavailable, image uploads disabled", "error", err)
		} else {
			presigner = p
		}
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		revoked:  revoked,
		users:    services.NewUserService(db, rm, revoked, c),
		profiles: services.NewProfileService(db, rm, presigner),
	}, nil
}

// newRevocationList uses Redis when an address is configured and keeps
// revocations in process memory otherwise.
func newRevocationList(ctx context.Context, c *config.Config, logger logging.Logger) (revocation.List, error) {
	if c.RedisAddr == "" {
		logger.Info(ctx, "Using in-memory revocation list")
		return revocation.NewMemoryList(), nil
	}

	rl := revocation.NewRedisList(revocation.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	if err := rl.Ping(ctx); err != nil {
		_ = rl.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	logger.Info(ctx, "Using redis revocation list", "address", c.RedisAddr)
	return rl, nil
}

// Run serves gRPC and sweeps expired refresh tokens until ctx is done or one
// of them fails. Resources are released before it returns.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")
	defer app.close(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.profiles)
		return s.Run(ctx)
	})

	g.Go(func() error {
		app.sweep(ctx, app.config.TokenSweepInterval)
		return nil
	})

	return g.Wait()
}

func (app *App) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.users.SweepExpired(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					app.logger.Warn(ctx, "refresh token sweep failed", "error", err)
				}
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired refresh tokens removed", "count", n)
			}
		}
	}
}

func (app *App) close(ctx context.Context) {
	if err := errors.Join(app.revoked.Close(), app.db.Close()); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
