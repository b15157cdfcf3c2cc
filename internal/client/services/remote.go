package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/client/client"
	"github.com/dmitrijs2005/farmclub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmclub/internal/common"
	"github.com/dmitrijs2005/farmclub/internal/cryptox"
	pb "github.com/dmitrijs2005/farmclub/internal/identitypb"
	"github.com/dmitrijs2005/farmclub/internal/logging"
)

// RemoteStore is the credential store backed by the identity service.
//
// The current identity is resolved once, on the first subscription: saved
// tokens are checked with WhoAmI; when the service cannot be reached the
// identity cached at the last login is used. Subscribers are called in the
// order changes happen and must not call back into the store from the
// callback.
type RemoteStore struct {
	client client.Client
	meta   metadata.Repository
	logger logging.Logger

	resolveOnce sync.Once

	// emitMu serializes "set current + notify" so every subscriber sees
	// changes in the same order.
	emitMu   sync.Mutex
	mu       sync.Mutex
	resolved bool
	current  *auth.Identity
	subs     map[int]func(*auth.Identity)
	nextSub  int
}

var _ auth.WatchableStore = (*RemoteStore)(nil)

func NewRemoteStore(c client.Client, meta metadata.Repository, logger logging.Logger) *RemoteStore {
	if logger == nil {
		logger = logging.Nop{}
	}
	s := &RemoteStore{
		client: c,
		meta:   meta,
		logger: logger,
		subs:   make(map[int]func(*auth.Identity)),
	}
	c.OnSessionLost(s.sessionLost)
	return s
}

// SubscribeToIdentityChanges registers fn. If the current identity is
// already known fn is called before this returns, otherwise once it is.
func (s *RemoteStore) SubscribeToIdentityChanges(fn func(*auth.Identity)) func() {
	s.emitMu.Lock()
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	resolved, current := s.resolved, s.current
	s.mu.Unlock()
	if resolved {
		fn(current)
	}
	s.emitMu.Unlock()

	if !resolved {
		s.resolveOnce.Do(func() { go s.resolve(context.Background()) })
	}

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *RemoteStore) resolve(ctx context.Context) {
	if !s.client.HasSession() {
		s.forget(ctx)
		s.emit(nil)
		return
	}

	user, err := s.client.WhoAmI(ctx)
	switch {
	case err == nil && user != nil:
		id := identityFromUser(user)
		s.remember(ctx, id)
		s.logger.Info(ctx, "session restored", "uid", id.ID)
		s.emit(id)
	case errors.Is(err, client.ErrUnavailable):
		cached, cerr := metadata.GetJSON[auth.Identity](ctx, s.meta, metadata.KeyCurrentIdentity)
		if cerr != nil {
			s.logger.Warn(ctx, "failed to read cached identity", "error", cerr)
		}
		s.logger.Warn(ctx, "identity service unreachable, using cached identity", "cached", cached != nil)
		s.emit(cached)
	default:
		s.logger.Info(ctx, "saved session rejected", "error", err)
		_ = s.client.SignOut(ctx)
		s.forget(ctx)
		s.emit(nil)
	}
}

func (s *RemoteStore) emit(id *auth.Identity) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.resolved = true
	s.current = id
	subs := make([]func(*auth.Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}

func (s *RemoteStore) sessionLost() {
	ctx := context.Background()
	s.logger.Warn(ctx, "remote session lost")
	s.forget(ctx)
	s.emit(nil)
}

func (s *RemoteStore) remember(ctx context.Context, id *auth.Identity) {
	if err := metadata.SetJSON(ctx, s.meta, metadata.KeyCurrentIdentity, id); err != nil {
		s.logger.Warn(ctx, "failed to cache identity", "error", err)
	}
}

func (s *RemoteStore) forget(ctx context.Context) {
	if err := s.meta.Delete(ctx, metadata.KeyCurrentIdentity); err != nil {
		s.logger.Warn(ctx, "failed to drop cached identity", "error", err)
	}
}

// CreateAccount registers the account and signs it in. The password never
// leaves the process: only a salt and a verifier derived from it are sent.
func (s *RemoteStore) CreateAccount(ctx context.Context, email, password, displayName string, _ auth.Role) (*auth.Identity, error) {
	if err := auth.ValidateSignup(email, password, displayName); err != nil {
		return nil, err
	}
	email = auth.NormalizeEmail(email)

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	verifier := cryptox.DeriveVerifier([]byte(password), salt)

	if _, err := s.client.Register(ctx, email, displayName, salt, verifier); err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			return nil, auth.ErrDuplicateAccount
		}
		return nil, mapClientError(err)
	}

	return s.login(ctx, email, verifier)
}

// Authenticate runs the salt/verifier login.
func (s *RemoteStore) Authenticate(ctx context.Context, email, password string) (*auth.Identity, error) {
	if err := auth.ValidateLogin(email, password); err != nil {
		return nil, err
	}
	email = auth.NormalizeEmail(email)

	salt, err := s.client.GetSalt(ctx, email)
	if err != nil {
		return nil, mapClientError(err)
	}
	verifier := cryptox.DeriveVerifier([]byte(password), salt)
	common.WipeByteArray(salt)

	return s.login(ctx, email, verifier)
}

func (s *RemoteStore) login(ctx context.Context, email string, verifier []byte) (*auth.Identity, error) {
	user, err := s.client.Login(ctx, email, verifier)
	if err != nil {
		return nil, mapClientError(err)
	}
	if user == nil {
		user = &pb.User{Email: email}
	}

	id := identityFromUser(user)
	s.remember(ctx, id)
	s.emit(id)
	return id, nil
}

// SignOut revokes the server session. The local view is cleared even when
// the service cannot be reached; the error is still returned.
func (s *RemoteStore) SignOut(ctx context.Context) error {
	err := s.client.SignOut(ctx)
	s.forget(ctx)
	s.emit(nil)
	return mapClientError(err)
}

// ProfileImageUploadURL asks the service for a presigned upload URL.
func (s *RemoteStore) ProfileImageUploadURL(ctx context.Context, fileName, contentType string) (string, error) {
	resp, err := s.client.ProfileImageUploadURL(ctx, fileName, contentType)
	if err != nil {
		return "", mapClientError(err)
	}
	return resp.URL, nil
}

func identityFromUser(u *pb.User) *auth.Identity {
	return &auth.Identity{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Origin:      auth.OriginRemote,
	}
}
