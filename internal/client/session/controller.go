package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/auth"
	"github.com/dmitrijs2005/farmclub/internal/logging"
)

var ErrUnsupportedStore = errors.New("credential store must implement SyncStore or WatchableStore")

type Controller struct {
	store     auth.CredentialStore
	profiles  auth.ProfileStore
	pending   auth.PendingProfiles
	logger    logging.Logger
	opTimeout time.Duration
	now       func() time.Time

	// opMu is held for the whole of Login, Signup and Logout.
	opMu sync.Mutex

	// notifyMu orders "mutate + notify" so subscribers see every change in
	// the order it was applied.
	notifyMu sync.Mutex

	mu        sync.Mutex
	cur       Session
	ready     bool
	opPending bool
	gen       uint64
	closed    bool
	subs      map[int]func(Session)
	nextSub   int

	readyCh     chan struct{}
	unsubscribe func()
}

// New builds a controller and starts bootstrap. With a SyncStore bootstrap
// finishes before New returns; with a WatchableStore it finishes when the
// store reports the current identity (see WaitReady).
func New(ctx context.Context, store auth.CredentialStore, profiles auth.ProfileStore, opts ...Option) (*Controller, error) {
	c := &Controller{
		store:    store,
		profiles: profiles,
		logger:   logging.Nop{},
		now:      time.Now,
		cur:      Session{State: StateBootstrapping, Loading: true},
		subs:     make(map[int]func(Session)),
		readyCh:  make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}

	switch st := store.(type) {
	case auth.WatchableStore:
		c.unsubscribe = st.SubscribeToIdentityChanges(c.onIdentityChanged)
	case auth.SyncStore:
		id, err := st.CurrentIdentity(ctx)
		if err != nil {
			c.logger.Warn(ctx, "failed to read current identity", "error", err)
			id = nil
		}
		gen := c.setIdentity(id)
		if id != nil {
			c.loadProfile(ctx, id, gen)
		}
		c.markReady(ctx)
	default:
		return nil, ErrUnsupportedStore
	}
	return c, nil
}

// Snapshot returns the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur.clone()
}

// Subscribe calls fn after every change. fn runs synchronously and must not
// call Login, Signup or Logout.
func (c *Controller) Subscribe(fn func(Session)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// WaitReady blocks until bootstrap has finished.
func (c *Controller) WaitReady(ctx context.Context) error {
	select {
	case <-c.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClearError empties the error slot, e.g. when the user edits the form.
func (c *Controller) ClearError() {
	c.update(func(s *Session) { s.Error = "" })
}

// Close stops listening to the store. The controller keeps its last state.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// update applies fn to the session, recomputes State and Loading, and
// notifies subscribers.
func (c *Controller) update(fn func(s *Session)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	fn(&c.cur)
	c.recomputeLocked()
	snap := c.cur.clone()
	subs := make([]func(Session), 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
}

func (c *Controller) recomputeLocked() {
	c.cur.Loading = !c.ready
	switch {
	case !c.ready:
		c.cur.State = StateBootstrapping
	case c.opPending:
		c.cur.State = StatePending
	case c.cur.Identity != nil:
		c.cur.State = StateAuthenticated
	default:
		c.cur.State = StateAnonymous
	}
}

// setIdentity makes id current. A different identity starts a new
// generation and drops the loaded profile; the same identity keeps both.
func (c *Controller) setIdentity(id *auth.Identity) uint64 {
	var gen uint64
	c.update(func(s *Session) {
		if sameIdentity(s.Identity, id) {
			if id != nil {
				cp := *id
				s.Identity = &cp
			}
			gen = c.gen
			return
		}
		c.gen++
		gen = c.gen
		s.Profile = nil
		if id == nil {
			s.Identity = nil
			return
		}
		cp := *id
		s.Identity = &cp
	})
	return gen
}

func sameIdentity(a, b *auth.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func (c *Controller) markReady(ctx context.Context) {
	first := false
	c.update(func(*Session) {
		if !c.ready {
			c.ready = true
			first = true
		}
	})
	if first {
		close(c.readyCh)
		snap := c.Snapshot()
		c.logger.Debug(ctx, "session bootstrapped", "state", snap.State)
	}
}

// onIdentityChanged handles pushes from a watchable store. The profile is
// loaded on a separate goroutine so the store's callback never blocks on I/O.
func (c *Controller) onIdentityChanged(id *auth.Identity) {
	c.mu.Lock()
	closed, opPending, ready := c.closed, c.opPending, c.ready
	c.mu.Unlock()
	if closed {
		return
	}

	ctx := context.Background()
	gen := c.setIdentity(id)
	c.logger.Debug(ctx, "identity changed", "present", id != nil)

	switch {
	case id == nil:
		c.markReady(ctx)
	case opPending && ready:
		// the running operation settles the profile when it finishes
	default:
		go func() {
			c.loadProfile(ctx, id, gen)
			c.markReady(ctx)
		}()
	}
}

// loadProfile fetches the profile of id and stores it if gen is still the
// current generation. A profile left pending by a failed signup is written
// first.
func (c *Controller) loadProfile(ctx context.Context, id *auth.Identity, gen uint64) {
	p, err := c.profiles.Fetch(ctx, id.ID)
	if err != nil {
		c.logger.Warn(ctx, "failed to fetch profile", "uid", id.ID, "error", err)
		return
	}
	if p == nil {
		p = c.completePending(ctx, id.ID)
	}
	if p == nil {
		return
	}

	c.update(func(s *Session) {
		if c.gen != gen {
			return
		}
		cp := *p
		s.Profile = &cp
	})
}

func (c *Controller) completePending(ctx context.Context, uid string) *auth.Profile {
	if c.pending == nil {
		return nil
	}
	p, err := c.pending.Pending(ctx, uid)
	if err != nil || p == nil {
		if err != nil {
			c.logger.Warn(ctx, "failed to read pending profile", "uid", uid, "error", err)
		}
		return nil
	}

	err = c.profiles.Create(ctx, p)
	switch {
	case err == nil:
		c.logger.Info(ctx, "pending profile written", "uid", uid)
	case errors.Is(err, auth.ErrAlreadyExists):
		stored, ferr := c.profiles.Fetch(ctx, uid)
		if ferr != nil {
			c.logger.Warn(ctx, "failed to fetch profile", "uid", uid, "error", ferr)
			return nil
		}
		p = stored
	case errors.Is(err, auth.ErrInvalidRole):
		c.logger.Warn(ctx, "dropping rejected pending profile", "uid", uid, "role", p.Role)
		p = nil
	default:
		c.logger.Warn(ctx, "pending profile still not written", "uid", uid, "error", err)
		return p
	}
	if err := c.pending.DeletePending(ctx, uid); err != nil {
		c.logger.Warn(ctx, "failed to drop pending profile", "uid", uid, "error", err)
	}
	return p
}

// begin enters Pending. Login and Signup fail fast while another operation
// or bootstrap runs and clear the error slot; Logout waits for it.
func (c *Controller) begin(ctx context.Context, wait bool) (context.Context, func(), error) {
	if wait {
		c.opMu.Lock()
	} else if !c.opMu.TryLock() {
		return nil, nil, auth.ErrOperationInProgress
	}

	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()
	if !ready && !wait {
		c.opMu.Unlock()
		return nil, nil, auth.ErrOperationInProgress
	}

	cancel := func() {}
	if c.opTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.opTimeout)
	}

	c.update(func(s *Session) {
		c.opPending = true
		if !wait {
			s.Error = ""
		}
	})

	return ctx, func() {
		cancel()
		c.update(func(*Session) { c.opPending = false })
		c.opMu.Unlock()
	}, nil
}

// settle loads the profile of whatever identity is current if it is missing.
func (c *Controller) settle(ctx context.Context) {
	c.mu.Lock()
	id, p, gen := c.cur.Identity, c.cur.Profile, c.gen
	c.mu.Unlock()

	if id != nil && p == nil {
		idCopy := *id
		c.loadProfile(ctx, &idCopy, gen)
	}
}

// adopt makes id, just returned by the store, the current identity. A
// WatchableStore has already pushed it, and any push since then (such as a
// lost session) is newer, so only its generation is read. ok is false when
// id is no longer current.
func (c *Controller) adopt(id *auth.Identity) (gen uint64, ok bool) {
	if _, watchable := c.store.(auth.WatchableStore); !watchable {
		return c.setIdentity(id), true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, sameIdentity(c.cur.Identity, id)
}

func (c *Controller) fail(ctx context.Context, op string, err error) error {
	err = auth.Classify(err)
	msg := auth.Message(err)
	c.update(func(s *Session) { s.Error = msg })
	c.logger.Warn(ctx, op+" failed", "error", err)
	return err
}

// Login authenticates and makes the identity current, replacing any
// previous one. On failure the prior identity is kept and the classified
// error is both stored and returned.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	ctx, done, err := c.begin(ctx, false)
	if err != nil {
		return err
	}
	defer done()

	id, err := c.store.Authenticate(ctx, email, password)
	if err != nil {
		c.settle(ctx)
		return c.fail(ctx, "login", err)
	}

	c.adopt(id)
	c.settle(ctx)
	c.logger.Info(ctx, "logged in", "uid", id.ID, "origin", id.Origin)
	return nil
}

// Signup creates the account and its profile and makes the new identity
// current. A duplicate email leaves the current identity untouched. If the
// account is created but the profile write fails, the identity stays
// current, the error is surfaced and the profile is kept as pending for the
// next bootstrap or login.
func (c *Controller) Signup(ctx context.Context, email, password, displayName string, role auth.Role) error {
	ctx, done, err := c.begin(ctx, false)
	if err != nil {
		return err
	}
	defer done()

	if role == "" {
		role = auth.RoleFarmer
	}
	if !role.Valid() {
		c.settle(ctx)
		return c.fail(ctx, "signup", auth.ErrInvalidRole)
	}

	id, err := c.store.CreateAccount(ctx, email, password, displayName, role)
	if err != nil {
		c.settle(ctx)
		return c.fail(ctx, "signup", err)
	}
	gen, current := c.adopt(id)

	profile := auth.NewProfile(id, role, c.now())
	err = c.profiles.Create(ctx, profile)
	switch {
	case err == nil:
		c.update(func(s *Session) {
			if current && c.gen == gen {
				s.Profile = profile
			}
		})
	case errors.Is(err, auth.ErrAlreadyExists):
		// keep the stored record; settle fetches it
	default:
		if c.pending != nil && !errors.Is(err, auth.ErrInvalidRole) {
			if perr := c.pending.SavePending(ctx, profile); perr != nil {
				c.logger.Error(ctx, "failed to keep pending profile", "uid", id.ID, "error", perr)
			}
		}
		return c.fail(ctx, "signup", fmt.Errorf("create profile: %w", err))
	}

	c.settle(ctx)
	c.logger.Info(ctx, "signed up", "uid", id.ID, "role", role)
	return nil
}

// Logout signs out of the store and clears the session. It waits for a
// running operation and then wins over its result. Store failures are
// logged, not returned: the local view is cleared regardless. From
// Anonymous it does nothing.
func (c *Controller) Logout(ctx context.Context) error {
	if !c.Snapshot().Authenticated() {
		// a login may be running; only bail out if none is
		if c.opMu.TryLock() {
			c.opMu.Unlock()
			return nil
		}
	}

	ctx, done, err := c.begin(ctx, true)
	if err != nil {
		return err
	}
	defer done()

	if !c.Snapshot().Authenticated() {
		return nil
	}

	if err := c.store.SignOut(ctx); err != nil {
		c.logger.Warn(ctx, "sign out failed, clearing local session anyway", "error", err)
	}
	c.setIdentity(nil)
	c.logger.Info(ctx, "logged out")
	return nil
}
