package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/config"
	"github.com/dmitrijs2005/microblog/internal/client/services"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/storage"
	"github.com/dmitrijs2005/microblog/internal/client/tokenstore"
	"github.com/dmitrijs2005/microblog/internal/logging"
	"github.com/dmitrijs2005/microblog/internal/markdown"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single liveness probe.
const pingTimeout = 3 * time.Second

type App struct {
	config *config.Config
	log    logging.Logger

	repos   *storage.Repositories
	http    *client.HTTPClient
	session *session.Controller

	authService    services.AuthService
	postService    services.PostService
	socialService  services.SocialService
	profileService services.ProfileService
	draftService   services.DraftService
	themeService   services.ThemeService

	renderer *markdown.TerminalRenderer

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database in cfg.DataDir and wires every
// component of the client. Close releases the database.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	repos, err := storage.Open(ctx, cfg.DataDir)
	if err != nil {
		log.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	a, err := newApp(ctx, cfg, log, repos)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	a.reader = bufio.NewReader(os.Stdin)
	a.out = os.Stdout
	return a, nil
}

func newApp(ctx context.Context, cfg *config.Config, log logging.Logger, repos *storage.Repositories) (*App, error) {
	store, fellBack, err := tokenstore.Open(cfg.TokenStore, repos.Metadata)
	if err != nil {
		return nil, err
	}
	if fellBack {
		log.Warn(ctx, "keyring unavailable, storing token in the local database")
	}

	a := &App{config: cfg, log: log, repos: repos}

	a.http, err = client.NewHTTPClient(cfg.ServerURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
		client.WithTokenSource(client.TokenSourceFunc(func() string { return a.session.Token() })),
		client.WithOnUnauthorized(a.forceLogout),
	)
	if err != nil {
		return nil, err
	}

	a.session = session.New(store, a.http, log)
	a.session.Subscribe(a.sessionChanged)

	a.authService = services.NewAuthService(a.http, a.session, repos.Metadata)
	a.postService = services.NewPostService(a.http)
	a.socialService = services.NewSocialService(a.http)
	a.profileService = services.NewProfileService(a.http, a.session)
	a.draftService = services.NewDraftService(a.http, repos)
	a.themeService = services.NewThemeService(repos.Metadata)

	if err := a.useTheme(a.themeService.Get(ctx)); err != nil {
		return nil, err
	}
	return a, nil
}

// forceLogout ends the session after the backend rejected its token.
func (a *App) forceLogout(ctx context.Context) {
	if err := a.session.Logout(ctx); err != nil {
		a.log.Error(ctx, "forced logout", "err", err)
	}
}

func (a *App) sessionChanged(s session.Snapshot) {
	a.log.Info(context.Background(), "session changed", "status", s.Status.String(), "user", s.Login())
}

func (a *App) useTheme(t markdown.Theme) error {
	r, err := markdown.NewTerminalRenderer(t, a.config.WrapWidth)
	if err != nil {
		return err
	}
	a.renderer = r
	return nil
}

// Close releases the local database.
func (a *App) Close() error {
	return a.repos.Close()
}

// Run restores the session, starts the online watcher and runs the REPL
// until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println(styles.title.Render("microblog") + " (type 'help' for commands)")

	a.session.Bootstrap(ctx)
	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.runREPL(ctx)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := a.session.Snapshot()
	who := "anonymous"
	switch s.Status {
	case session.Authenticated:
		who = s.Login()
	case session.Initializing:
		who = "starting"
	}
	if m := a.Mode(); m != ModeUnknown {
		who += " " + string(m)
	}
	return fmt.Sprintf("(%s)", who)
}
