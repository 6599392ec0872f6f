package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/microblog/internal/client/models"
	"github.com/dmitrijs2005/microblog/internal/logging"
)

// Status is the authentication state of the session.
type Status int

const (
	// Initializing holds only while the stored token is being checked at startup.
	Initializing Status = iota
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var (
	// ErrNotAuthenticated is returned by UpdateUser outside the Authenticated state.
	ErrNotAuthenticated = errors.New("session: not authenticated")
	// ErrIncompleteLogin is returned by Login when the token or the user is missing.
	ErrIncompleteLogin = errors.New("session: token and user are required")
)

// Snapshot is an immutable view of the session. Token is empty and User is
// nil unless Status is Authenticated.
type Snapshot struct {
	Status Status
	Token  string
	User   *models.User
}

// Login returns the current user's login, or "" when anonymous.
func (s Snapshot) Login() string {
	if s.User == nil {
		return ""
	}
	return s.User.Login
}

// TokenStore persists the bearer token across restarts.
// LoadToken reports ok=false when no token is stored; DeleteToken on an empty
// store is not an error.
type TokenStore interface {
	LoadToken(ctx context.Context) (token string, ok bool, err error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

// UserFetcher resolves the user a token belongs to.
type UserFetcher interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// UserFetcherFunc adapts a function to UserFetcher.
type UserFetcherFunc func(ctx context.Context, token string) (*models.User, error)

func (f UserFetcherFunc) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Controller is the session state holder.
//
// Operations are serialized: one logical update (store write, state change,
// observer notification) completes before the next starts. Observers run
// synchronously on the updating goroutine, in subscription order, and all of
// them see the same Snapshot. An observer must not call back into Login,
// Logout, UpdateUser or Bootstrap.
type Controller struct {
	store   TokenStore
	fetcher UserFetcher
	log     logging.Logger

	opMu sync.Mutex // serializes operations

	mu        sync.RWMutex // guards the fields below
	state     Snapshot
	observers []observer
	nextID    int

	once  sync.Once
	ready chan struct{}
}

// New creates a controller in the Initializing state. Call Bootstrap to
// resolve it.
func New(store TokenStore, fetcher UserFetcher, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop{}
	}
	return &Controller{
		store:   store,
		fetcher: fetcher,
		log:     log.With("component", "session"),
		state:   Snapshot{Status: Initializing},
		ready:   make(chan struct{}),
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Status is shorthand for Snapshot().Status.
func (c *Controller) Status() Status {
	return c.Snapshot().Status
}

// Token returns the bearer token, or "" when not authenticated.
func (c *Controller) Token() string {
	return c.Snapshot().Token
}

// Ready is closed once Bootstrap has resolved the Initializing state.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Subscribe registers fn to be called after every state change. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// Bootstrap resolves the startup state. Only the first call does anything.
//
// Without a stored token the session becomes Anonymous with no network call.
// Otherwise the user is fetched with the stored token; on any failure the
// stored token is discarded and the session becomes Anonymous. Failures are
// logged, not returned.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.once.Do(func() {
		c.opMu.Lock()
		defer c.opMu.Unlock()
		defer close(c.ready)

		c.commit(c.resolve(ctx))
	})
}

func (c *Controller) resolve(ctx context.Context) Snapshot {
	anonymous := Snapshot{Status: Anonymous}

	token, ok, err := c.store.LoadToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to read stored token", "err", err)
		return anonymous
	}
	if !ok || token == "" {
		c.log.Debug(ctx, "no stored token")
		return anonymous
	}

	user, err := c.fetcher.CurrentUser(ctx, token)
	if err == nil && user == nil {
		err = errors.New("empty user")
	}
	if err != nil {
		c.log.Info(ctx, "stored token rejected, discarding", "err", err)
		if derr := c.store.DeleteToken(ctx); derr != nil {
			c.log.Error(ctx, "failed to delete stored token", "err", derr)
		}
		return anonymous
	}

	c.log.Info(ctx, "session restored", "login", user.Login)
	return Snapshot{Status: Authenticated, Token: token, User: user}
}

// Login persists token and makes user the current user. It performs no
// network I/O; the caller has already verified the credentials.
func (c *Controller) Login(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return ErrIncompleteLogin
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.store.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	u := *user
	c.commit(Snapshot{Status: Authenticated, Token: token, User: &u})
	c.log.Info(ctx, "logged in", "login", u.Login)
	return nil
}

// Logout erases the stored token and clears the user. Calling it while
// already Anonymous does nothing. The in-memory state is cleared even if the
// store fails; that failure is returned.
func (c *Controller) Logout(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.Snapshot().Status == Anonymous {
		return nil
	}

	err := c.store.DeleteToken(ctx)
	if err != nil {
		c.log.Error(ctx, "failed to delete stored token", "err", err)
		err = fmt.Errorf("delete token: %w", err)
	}

	c.commit(Snapshot{Status: Anonymous})
	c.log.Info(ctx, "logged out")
	return err
}

// UpdateUser replaces the current user record without changing status.
func (c *Controller) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrIncompleteLogin
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	cur := c.Snapshot()
	if cur.Status != Authenticated {
		return ErrNotAuthenticated
	}

	u := *user
	cur.User = &u
	c.commit(cur)
	return nil
}

// commit publishes s and notifies observers. Caller holds opMu.
func (c *Controller) commit(s Snapshot) {
	c.mu.Lock()
	c.state = s
	obs := make([]observer, len(c.observers))
	copy(obs, c.observers)
	c.mu.Unlock()

	for _, o := range obs {
		o.fn(s)
	}
}
