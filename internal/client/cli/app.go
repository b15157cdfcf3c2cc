package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/client/client"
	"github.com/dmitrijs2005/farmclub/internal/client/config"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmclub/internal/client/services"
	"github.com/dmitrijs2005/farmclub/internal/client/session"
	"github.com/dmitrijs2005/farmclub/internal/logging"
	"github.com/dmitrijs2005/farmclub/internal/netx"
)

// sessionController is the part of *session.Controller the CLI drives.
type sessionController interface {
	Snapshot() session.Session
	Subscribe(fn func(session.Session)) func()
	WaitReady(ctx context.Context) error
	ClearError()
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, email, password, displayName string, role auth.Role) error
	Logout(ctx context.Context) error
	Close()
}

// imageUploader is implemented by stores that can hand out upload URLs.
type imageUploader interface {
	ProfileImageUploadURL(ctx context.Context, fileName, contentType string) (string, error)
}

const uploadTimeout = time.Minute

type filePutter interface {
	Put(ctx context.Context, url, contentType string, body []byte) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	session  sessionController
	uploader imageUploader
	putter   filePutter
	readFile func(name string) ([]byte, error)
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error

	mu         sync.Mutex
	returnPath string
	lastState  session.State
}

// NewApp opens the local database and builds the credential store selected
// by cfg.Strategy.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.OpenDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{
		config:   cfg,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		putter:   netx.NewUploader(uploadTimeout),
		readFile: os.ReadFile,
		closers:  []func() error{db.Close},
	}

	store, profiles, err := a.buildStores(ctx, db)
	if err != nil {
		a.close()
		return nil, err
	}

	meta := metadata.NewSQLiteRepository(db)
	ctrl, err := session.New(ctx, store, profiles,
		session.WithLogger(logger),
		session.WithPendingProfiles(services.NewMetadataPendingProfiles(meta)),
		session.WithOperationTimeout(2*cfg.RequestTimeout),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.session = ctrl
	return a, nil
}

func (a *App) buildStores(ctx context.Context, db *sql.DB) (auth.CredentialStore, auth.ProfileStore, error) {
	switch a.config.Strategy {
	case config.StrategyLocal:
		return services.NewLocalStore(db, a.logger), services.NewLocalProfileStore(db), nil

	case config.StrategyRemote:
		meta := metadata.NewSQLiteRepository(db)
		c, err := client.NewGRPCClient(ctx, a.config.ServerEndpointAddr,
			client.WithRequestTimeout(a.config.RequestTimeout),
			client.WithTokenStore(client.NewMetadataTokenStore(meta)),
			client.WithLogger(a.logger),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("identity service client: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		store := services.NewRemoteStore(c, meta, a.logger)
		a.uploader = store
		return store, services.NewRemoteProfileStore(c), nil
	}
	return nil, nil, fmt.Errorf("unknown strategy %q", a.config.Strategy)
}

// Run starts the REPL and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.close()
	a.Root(ctx)
}

func (a *App) close() {
	if a.session != nil {
		a.session.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn(context.Background(), "close failed", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

// watchSession reports identity changes the user did not trigger, such as
// an expired remote session.
func (a *App) watchSession(s session.Session) {
	a.mu.Lock()
	prev := a.lastState
	a.lastState = s.State
	a.mu.Unlock()

	if prev == session.StateAuthenticated && s.State == session.StateAnonymous {
		fmt.Fprintln(a.out, "\nYou have been signed out.")
	}
}

func (a *App) setReturnPath(p string) {
	a.mu.Lock()
	a.returnPath = p
	a.mu.Unlock()
}

func (a *App) takeReturnPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.returnPath
	a.returnPath = ""
	return p
}
