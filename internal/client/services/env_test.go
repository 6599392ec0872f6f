package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/client/clienttest"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/storage"
	"github.com/dmitrijs2005/microblog/internal/client/tokenstore"
)

// env wires the services against an in-memory backend and database the same
// way the CLI does.
type env struct {
	backend *clienttest.Backend
	repos   *storage.Repositories
	store   session.TokenStore
	http    *client.HTTPClient
	session *session.Controller

	auth    AuthService
	posts   PostService
	social  SocialService
	profile ProfileService
	drafts  DraftService
	theme   ThemeService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{backend: clienttest.NewBackend(t), repos: storage.NewRepositories(db)}
	e.store = tokenstore.NewMetadataStore(e.repos.Metadata)
	e.connect(t)
	return e
}

// connect builds a fresh client and session over the same database, as a
// restart of the CLI would.
func (e *env) connect(t *testing.T) {
	t.Helper()
	var sess *session.Controller
	hc, err := client.NewHTTPClient(e.backend.URL(),
		client.WithTokenSource(client.TokenSourceFunc(func() string { return sess.Token() })),
		client.WithOnUnauthorized(func(ctx context.Context) { _ = sess.Logout(ctx) }),
	)
	require.NoError(t, err)
	sess = session.New(e.store, hc, nil)
	sess.Bootstrap(context.Background())

	e.http, e.session = hc, sess
	e.auth = NewAuthService(hc, sess, e.repos.Metadata)
	e.posts = NewPostService(hc)
	e.social = NewSocialService(hc)
	e.profile = NewProfileService(hc, sess)
	e.drafts = NewDraftService(hc, e.repos)
	e.theme = NewThemeService(e.repos.Metadata)
}

func (e *env) login(t *testing.T) {
	t.Helper()
	_, err := e.auth.Login(context.Background(), "testuser", "password")
	require.NoError(t, err)
}

func (e *env) requests(key string) int {
	e.backend.Lock()
	defer e.backend.Unlock()
	return e.backend.Requests[key]
}

func (e *env) failWith(route string, status int) {
	e.backend.Lock()
	defer e.backend.Unlock()
	e.backend.FailWith[route] = status
}
